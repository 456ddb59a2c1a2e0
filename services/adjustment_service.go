package services

import (
	"errors"
	"fmt"

	"schoolpay/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdjustmentRequest represents a discount or scholarship to apply to an account
type AdjustmentRequest struct {
	Kind   models.AdjustmentKind `json:"kind" validate:"required,oneof=DISCOUNT SCHOLARSHIP"`
	Name   string                `json:"name" validate:"required,min=2,max=100"`
	Type   models.DiscountType   `json:"type" validate:"required,oneof=FIXED PERCENTAGE"`
	Value  float64               `json:"value" validate:"required,gt=0"`
	Reason string                `json:"reason" validate:"max=255"`
}

// ApplyAdjustments computes the reduction amount for each request against the
// account total. FIXED uses the value as-is, PERCENTAGE takes value percent of
// the total. Fails with ValidationError when the combined reductions exceed
// the total. Pure: no side effects, the caller persists the results.
func ApplyAdjustments(totalAmount float64, requests []AdjustmentRequest) ([]float64, error) {
	if totalAmount < 0 {
		return nil, &ValidationError{Message: "total amount cannot be negative"}
	}

	amounts := make([]float64, len(requests))
	var sum float64
	for i, req := range requests {
		if req.Value <= 0 {
			return nil, &ValidationError{Message: "adjustment value must be greater than 0"}
		}
		switch req.Type {
		case models.DiscountTypeFixed:
			amounts[i] = req.Value
		case models.DiscountTypePercentage:
			amounts[i] = totalAmount * req.Value / 100
		default:
			return nil, &ValidationError{Message: fmt.Sprintf("unknown discount type: %s", req.Type)}
		}
		sum += amounts[i]
	}

	if sum > totalAmount {
		return nil, &ValidationError{
			Message: fmt.Sprintf("combined reductions %.2f exceed total amount %.2f", sum, totalAmount),
		}
	}

	return amounts, nil
}

// AdjustmentService applies discounts and scholarships to student fee accounts
type AdjustmentService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewAdjustmentService creates a new AdjustmentService instance
func NewAdjustmentService(db *gorm.DB) *AdjustmentService {
	return &AdjustmentService{
		db:        db,
		validator: validator.New(),
	}
}

// Apply attaches the given adjustments to an account and refreshes its derived
// fields. The joint cap is enforced against adjustments already on the account:
// existing reductions plus new ones may never exceed the account total.
func (s *AdjustmentService) Apply(studentFeeID uint, requests []AdjustmentRequest) (*models.StudentFee, error) {
	if len(requests) == 0 {
		return nil, &ValidationError{Message: "at least one adjustment is required"}
	}
	for _, req := range requests {
		if err := s.validator.Struct(req); err != nil {
			return nil, translateValidationErrors(err)
		}
	}

	// Start the transaction
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("failed to begin transaction")
	}

	// Lock the account row for the duration of the transaction
	var account models.StudentFee
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, studentFeeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "student fee account"}
		}
		return nil, errors.New("failed to load fee account")
	}

	// Compute the new reduction amounts against the account total
	amounts, err := ApplyAdjustments(account.TotalAmount, requests)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Enforce the joint cap together with adjustments already applied
	var newDiscount, newScholarship float64
	for i, req := range requests {
		if req.Kind == models.AdjustmentKindDiscount {
			newDiscount += amounts[i]
		} else {
			newScholarship += amounts[i]
		}
	}
	combined := account.DiscountAmount + account.ScholarshipAmount + newDiscount + newScholarship
	if combined > account.TotalAmount {
		tx.Rollback()
		return nil, &ValidationError{
			Message: fmt.Sprintf("combined reductions %.2f exceed total amount %.2f", combined, account.TotalAmount),
		}
	}

	// Persist the adjustment rows
	for i, req := range requests {
		adjustment := &models.FeeAdjustment{
			StudentFeeID:   account.ID,
			Kind:           req.Kind,
			Name:           req.Name,
			DiscountType:   req.Type,
			DiscountValue:  req.Value,
			DiscountAmount: amounts[i],
			Reason:         req.Reason,
		}
		if err := tx.Create(adjustment).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("failed to save adjustment")
		}
	}

	// Update the account's reduction totals and derived fields
	account.DiscountAmount += newDiscount
	account.ScholarshipAmount += newScholarship
	if err := refreshAccount(tx, &account); err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("failed to commit transaction")
	}

	return &account, nil
}
