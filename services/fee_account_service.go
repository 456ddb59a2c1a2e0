package services

import (
	"errors"
	"time"

	"schoolpay/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeeLedgerDTO is the read-only projection of a student fee account: the
// account itself, the structure components it was built from, every adjustment
// and every payment, newest first
type FeeLedgerDTO struct {
	Account         models.StudentFee      `json:"account"`
	EffectiveStatus models.FeeStatus       `json:"effective_status"`
	Components      []models.FeeComponent  `json:"components"`
	Adjustments     []models.FeeAdjustment `json:"adjustments"`
	Payments        []models.Payment       `json:"payments"`
}

// FeeAccountService provides read and recompute operations on student fee accounts
type FeeAccountService struct {
	db *gorm.DB
}

// NewFeeAccountService creates a new FeeAccountService instance
func NewFeeAccountService(db *gorm.DB) *FeeAccountService {
	return &FeeAccountService{db: db}
}

// sumCompletedPayments returns the sum of all non-voided payments on an account
func sumCompletedPayments(tx *gorm.DB, studentFeeID uint) (float64, error) {
	var paidTotal float64
	err := tx.Model(&models.Payment{}).
		Where("student_fee_id = ? AND status = ?", studentFeeID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidTotal).Error
	return paidTotal, err
}

// refreshAccount recomputes an account's derived fields from the payment sum
// and saves it. Must run inside the caller's transaction so the payment sum and
// the account update are observed atomically.
func refreshAccount(tx *gorm.DB, account *models.StudentFee) error {
	paidTotal, err := sumCompletedPayments(tx, account.ID)
	if err != nil {
		return errors.New("failed to sum payments")
	}

	account.Recompute(paidTotal)
	account.UpdatedAt = time.Now()

	// Write the account row only; preloaded associations stay untouched
	if err := tx.Omit(clause.Associations).Save(account).Error; err != nil {
		return errors.New("failed to update fee account")
	}
	return nil
}

// GetLedger assembles the fee ledger for a student fee account. Reads committed
// state only; no locking.
func (s *FeeAccountService) GetLedger(studentFeeID uint) (*FeeLedgerDTO, error) {
	var account models.StudentFee
	if err := s.db.Preload("Student").
		Preload("FeeStructure").
		Preload("FeeStructure.Components").
		Preload("Adjustments").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.paid_at DESC")
		}).
		First(&account, studentFeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "student fee account"}
		}
		return nil, errors.New("failed to load fee account")
	}

	return &FeeLedgerDTO{
		Account:         account,
		EffectiveStatus: account.EffectiveStatus(time.Now()),
		Components:      account.FeeStructure.Components,
		Adjustments:     account.Adjustments,
		Payments:        account.Payments,
	}, nil
}

// GetAccountsByStudentID returns all fee accounts for a student
func (s *FeeAccountService) GetAccountsByStudentID(studentID uint) ([]models.StudentFee, error) {
	var accounts []models.StudentFee
	if err := s.db.Where("student_id = ?", studentID).
		Preload("FeeStructure").
		Find(&accounts).Error; err != nil {
		return nil, errors.New("failed to load fee accounts")
	}
	return accounts, nil
}
