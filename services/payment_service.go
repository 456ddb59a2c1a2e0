package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"schoolpay/models"
	"schoolpay/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectPaymentDTO represents a payment collection request. Amount carries no
// validate tag: the amount rule, including zero, belongs to
// validateCollectRequest so rejections carry InvalidAmountError.
type CollectPaymentDTO struct {
	StudentFeeID    uint                 `json:"-" validate:"required"`
	Amount          float64              `json:"amount"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"required"`
	TransactionID   string               `json:"transaction_id"`
	ReferenceNumber string               `json:"reference_number"`
	BankName        string               `json:"bank_name"`
	Remarks         string               `json:"remarks" validate:"max=255"`
	CollectedByID   uint                 `json:"-"`
}

// PaymentDTO represents a payment in responses
type PaymentDTO struct {
	ID              uint      `json:"id"`
	StudentFeeID    uint      `json:"student_fee_id"`
	Amount          float64   `json:"amount"`
	PaymentMethod   string    `json:"payment_method"`
	TransactionID   *string   `json:"transaction_id,omitempty"`
	ReferenceNumber *string   `json:"reference_number,omitempty"`
	BankName        *string   `json:"bank_name,omitempty"`
	ReceiptNumber   string    `json:"receipt_number"`
	Status          string    `json:"status"`
	PaidAt          time.Time `json:"paid_at"`
	Remarks         string    `json:"remarks,omitempty"`
}

// CollectPaymentResponseDTO represents the result of a collection: the created
// payment and the account after recomputation
type CollectPaymentResponseDTO struct {
	Payment PaymentDTO        `json:"payment"`
	Account models.StudentFee `json:"account"`
}

// guardianNotifier is the subset of EmailService used after a collection
type guardianNotifier interface {
	SendReceiptNotification(to, receiptNumber string, amount, balance float64) error
	SendAccountSettledNotification(to string, studentFeeID uint) error
}

// accountLock guards one fee account; holders counts waiters so the entry can
// be dropped once nobody needs it
type accountLock struct {
	mu      sync.Mutex
	holders int
}

// PaymentService collects and voids payments against student fee accounts
type PaymentService struct {
	db        *gorm.DB
	validator *validator.Validate
	issuer    ReceiptIssuer
	email     guardianNotifier

	// per-account serialization on top of the row lock, so two concurrent
	// collections for the same account never race on the balance check
	mu    sync.Mutex
	locks map[uint]*accountLock
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(db *gorm.DB, issuer ReceiptIssuer, email *EmailService) *PaymentService {
	s := &PaymentService{
		db:        db,
		validator: validator.New(),
		issuer:    issuer,
		locks:     make(map[uint]*accountLock),
	}
	if email != nil {
		s.email = email
	}
	return s
}

// acquireAccount takes the mutex guarding a single fee account
func (s *PaymentService) acquireAccount(studentFeeID uint) {
	s.mu.Lock()
	lock, exists := s.locks[studentFeeID]
	if !exists {
		lock = &accountLock{}
		s.locks[studentFeeID] = lock
	}
	lock.holders++
	s.mu.Unlock()

	lock.mu.Lock()
}

// releaseAccount releases the account mutex and drops the table entry once the
// last holder is gone
func (s *PaymentService) releaseAccount(studentFeeID uint) {
	s.mu.Lock()
	lock := s.locks[studentFeeID]
	lock.holders--
	if lock.holders == 0 {
		delete(s.locks, studentFeeID)
	}
	s.mu.Unlock()

	lock.mu.Unlock()
}

// validateCollectRequest checks the request against the method rules before
// anything touches the database
func validateCollectRequest(dto CollectPaymentDTO) error {
	if !dto.PaymentMethod.IsValid() {
		return &InvalidMethodError{Method: string(dto.PaymentMethod)}
	}
	if dto.PaymentMethod.RequiresTransactionID() && dto.TransactionID == "" {
		return &MissingFieldError{Field: "transaction_id", Method: string(dto.PaymentMethod)}
	}
	if dto.PaymentMethod.RequiresReferenceNumber() && dto.ReferenceNumber == "" {
		return &MissingFieldError{Field: "reference_number", Method: string(dto.PaymentMethod)}
	}
	if dto.Amount <= 0 {
		return &InvalidAmountError{
			Amount:  dto.Amount,
			Message: "payment amount must be greater than 0",
		}
	}
	return nil
}

// checkAgainstAccount checks the amount against the account's current state:
// settled accounts accept nothing, and no payment may exceed the balance
func checkAgainstAccount(amount float64, account *models.StudentFee) error {
	if account.Status == models.FeeStatusPaid {
		return &ConflictError{Message: "account is already fully paid"}
	}
	if amount > account.BalanceAmount {
		return &InvalidAmountError{
			Amount:  amount,
			Balance: account.BalanceAmount,
			Message: fmt.Sprintf("payment amount %.2f exceeds balance %.2f", amount, account.BalanceAmount),
		}
	}
	return nil
}

// Collect validates and records a payment against a fee account. The balance
// check, payment insert, receipt issuance and account recomputation run inside
// one transaction with the account row locked, so a concurrent collection
// observes this one's effect before its own check runs.
func (s *PaymentService) Collect(dto CollectPaymentDTO) (*CollectPaymentResponseDTO, error) {
	start := time.Now()

	// Validate the DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, translateValidationErrors(err)
	}

	// Validate method and amount rules before any persistence
	if err := validateCollectRequest(dto); err != nil {
		utils.GetMetrics().RecordCollection(0, err)
		return nil, err
	}

	// Serialize collections per account
	s.acquireAccount(dto.StudentFeeID)
	defer s.releaseAccount(dto.StudentFeeID)

	// Start the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Load and lock the account row
	var account models.StudentFee
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Student").
		First(&account, dto.StudentFeeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "student fee account"}
		}
		return nil, errors.New("failed to load fee account")
	}

	// A settled account accepts nothing, and the payment may not exceed the
	// current balance
	if err := checkAgainstAccount(dto.Amount, &account); err != nil {
		tx.Rollback()
		utils.GetMetrics().RecordCollection(0, err)
		return nil, err
	}

	// Build the payment row
	now := time.Now()
	payment := &models.Payment{
		StudentFeeID:  account.ID,
		Amount:        dto.Amount,
		PaymentMethod: dto.PaymentMethod,
		Status:        models.PaymentStatusCompleted,
		PaidAt:        now,
		CollectedByID: dto.CollectedByID,
		Remarks:       dto.Remarks,
	}
	if dto.TransactionID != "" {
		payment.TransactionID = &dto.TransactionID
	}
	if dto.ReferenceNumber != "" {
		payment.ReferenceNumber = &dto.ReferenceNumber
	}
	if dto.BankName != "" {
		payment.BankName = &dto.BankName
	}

	// Issue the receipt number inside the same transaction
	receiptNumber, err := s.issuer.Issue(tx, payment)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	payment.ReceiptNumber = receiptNumber

	// Persist the payment
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to save payment")
	}

	// Recompute the account from the updated payment sum
	if err := refreshAccount(tx, &account); err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordCollection(payment.Amount, nil)
	utils.LogOperation("collect_payment", start, nil)

	s.notifyCollection(&account, payment)

	return &CollectPaymentResponseDTO{
		Payment: toPaymentDTO(payment),
		Account: account,
	}, nil
}

// notifyCollection emails the guardian about a collected payment, adding a
// settled notice when the collection brings the account to PAID. Send failures
// are logged and never fail the collection.
func (s *PaymentService) notifyCollection(account *models.StudentFee, payment *models.Payment) {
	if s.email == nil || account.Student.GuardianEmail == "" {
		return
	}

	if err := s.email.SendReceiptNotification(
		account.Student.GuardianEmail,
		payment.ReceiptNumber,
		payment.Amount,
		account.BalanceAmount,
	); err != nil {
		utils.LogError("failed to send receipt notification: %v", err)
	}

	if account.Status == models.FeeStatusPaid {
		if err := s.email.SendAccountSettledNotification(account.Student.GuardianEmail, account.ID); err != nil {
			utils.LogError("failed to send settled notification: %v", err)
		}
	}
}

// Void reverses an erroneous payment with a compensating entry. The payment
// row itself stays immutable apart from its status flag; the reversal restores
// the account balance and the account recomputes, which may move a PAID
// account back to PARTIAL or PENDING.
func (s *PaymentService) Void(paymentID uint, reason string, reversedBy uint) (*models.StudentFee, error) {
	if reason == "" {
		return nil, &ValidationError{Message: "a void reason is required"}
	}

	// Start the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Load the payment
	var payment models.Payment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, paymentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "payment"}
		}
		return nil, errors.New("failed to load payment")
	}

	if payment.Status == models.PaymentStatusVoided {
		tx.Rollback()
		return nil, &ConflictError{Message: "payment is already voided"}
	}

	// Lock the account row
	var account models.StudentFee
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, payment.StudentFeeID).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to load fee account")
	}

	// Record the compensating entry
	reversal := &models.PaymentReversal{
		PaymentID:  payment.ID,
		Amount:     payment.Amount,
		Reason:     reason,
		ReversedBy: reversedBy,
	}
	if err := tx.Create(reversal).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to save payment reversal")
	}

	// Flip the payment out of the paid sum
	payment.Status = models.PaymentStatusVoided
	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to update payment status")
	}

	// Recompute the account without the voided payment
	if err := refreshAccount(tx, &account); err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	utils.GetMetrics().RecordVoid(reversal.Amount)
	return &account, nil
}

// GetPaymentsByAccountID returns all payments on an account, newest first
func (s *PaymentService) GetPaymentsByAccountID(studentFeeID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Where("student_fee_id = ?", studentFeeID).
		Order("paid_at DESC").
		Find(&payments).Error; err != nil {
		return nil, errors.New("failed to load payments")
	}
	return payments, nil
}

// toPaymentDTO converts a Payment model into a DTO
func toPaymentDTO(payment *models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:              payment.ID,
		StudentFeeID:    payment.StudentFeeID,
		Amount:          payment.Amount,
		PaymentMethod:   string(payment.PaymentMethod),
		TransactionID:   payment.TransactionID,
		ReferenceNumber: payment.ReferenceNumber,
		BankName:        payment.BankName,
		ReceiptNumber:   payment.ReceiptNumber,
		Status:          string(payment.Status),
		PaidAt:          payment.PaidAt,
		Remarks:         payment.Remarks,
	}
}
