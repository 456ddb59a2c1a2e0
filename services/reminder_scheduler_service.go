package services

import (
	"errors"
	"log"
	"time"

	"schoolpay/models"

	"gorm.io/gorm"
)

// ReminderSchedulerService periodically emails guardians of accounts that are
// past their due date with an outstanding balance. Purely informational: the
// stored account status is never changed here and payment is never blocked.
type ReminderSchedulerService struct {
	db       *gorm.DB
	email    *EmailService
	interval time.Duration
}

// NewReminderSchedulerService creates a new ReminderSchedulerService instance
func NewReminderSchedulerService(db *gorm.DB, email *EmailService, interval time.Duration) *ReminderSchedulerService {
	return &ReminderSchedulerService{
		db:       db,
		email:    email,
		interval: interval,
	}
}

// Start launches the reminder loop
func (s *ReminderSchedulerService) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for range ticker.C {
			if err := s.processOverdueAccounts(); err != nil {
				log.Printf("failed to process overdue accounts: %v", err)
			}
		}
	}()
}

// processOverdueAccounts finds unpaid accounts past their due date and sends reminders
func (s *ReminderSchedulerService) processOverdueAccounts() error {
	var accounts []models.StudentFee
	if err := s.db.Where("due_date < ? AND balance_amount > 0 AND status IN ?",
		time.Now(), []models.FeeStatus{models.FeeStatusPending, models.FeeStatusPartial}).
		Preload("Student").
		Find(&accounts).Error; err != nil {
		return errors.New("failed to load overdue accounts")
	}

	for _, account := range accounts {
		if account.Student.GuardianEmail == "" {
			continue
		}
		studentName := account.Student.FirstName + " " + account.Student.LastName
		if err := s.email.SendDueReminder(
			account.Student.GuardianEmail,
			studentName,
			account.BalanceAmount,
			account.DueDate,
		); err != nil {
			// Log and keep going; one bad address must not stop the batch
			log.Printf("failed to send due reminder for account %d: %v", account.ID, err)
		}
	}

	return nil
}
