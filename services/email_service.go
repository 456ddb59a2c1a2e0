package services

import (
	"fmt"
	"time"

	"schoolpay/config"

	"gopkg.in/gomail.v2"
)

// EmailService sends notification emails
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		config: cfg,
	}
}

// SendEmail sends an email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendReceiptNotification confirms a collected payment to the guardian
func (s *EmailService) SendReceiptNotification(to, receiptNumber string, amount, balance float64) error {
	subject := "Fee payment received"
	body := fmt.Sprintf(`
		<h2>Fee payment received</h2>
		<p>Receipt number: %s</p>
		<p>Amount paid: %.2f</p>
		<p>Remaining balance: %.2f</p>
		<p>Date: %s</p>
		<p>Please keep the receipt number for your records.</p>
	`, receiptNumber, amount, balance, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendDueReminder reminds a guardian about an outstanding balance
func (s *EmailService) SendDueReminder(to, studentName string, balance float64, dueDate time.Time) error {
	subject := "Fee payment reminder"
	body := fmt.Sprintf(`
		<h2>Fee payment reminder</h2>
		<p>Student: %s</p>
		<p>Outstanding balance: %.2f</p>
		<p>Due date: %s</p>
		<p>Please settle the balance at your earliest convenience.</p>
	`, studentName, balance, dueDate.Format("02.01.2006"))

	return s.SendEmail(to, subject, body)
}

// SendAccountSettledNotification congratulates the guardian on full payment
func (s *EmailService) SendAccountSettledNotification(to string, studentFeeID uint) error {
	subject := "Fee account fully paid"
	body := fmt.Sprintf(`
		<h2>Thank you!</h2>
		<p>Fee account #%d has been fully settled.</p>
		<p>If you have any questions, please contact the school office.</p>
	`, studentFeeID)

	return s.SendEmail(to, subject, body)
}
