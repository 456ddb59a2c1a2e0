package models

import (
	"time"
)

// FeeStatus represents the payment status of a student fee account
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "PENDING"
	FeeStatusPartial FeeStatus = "PARTIAL"
	FeeStatusPaid    FeeStatus = "PAID"
	FeeStatusOverdue FeeStatus = "OVERDUE"
)

// StudentFee represents the per-student instantiation of a fee structure.
// All derived fields (final amount, balance, status) are maintained by Recompute;
// payments are the only thing that moves paid_amount.
type StudentFee struct {
	ID                uint            `gorm:"primaryKey;autoIncrement"`
	StudentID         uint            `gorm:"column:student_id;not null;index"`
	Student           Student         `gorm:"foreignKey:StudentID"`
	FeeStructureID    uint            `gorm:"column:fee_structure_id;not null;index"`
	FeeStructure      FeeStructure    `gorm:"foreignKey:FeeStructureID"`
	TotalAmount       float64         `gorm:"column:total_amount;type:decimal(12,2);not null"`
	DiscountAmount    float64         `gorm:"column:discount_amount;type:decimal(12,2);not null;default:0"`
	ScholarshipAmount float64         `gorm:"column:scholarship_amount;type:decimal(12,2);not null;default:0"`
	FinalAmount       float64         `gorm:"column:final_amount;type:decimal(12,2);not null"`
	PaidAmount        float64         `gorm:"column:paid_amount;type:decimal(12,2);not null;default:0"`
	BalanceAmount     float64         `gorm:"column:balance_amount;type:decimal(12,2);not null"`
	Status            FeeStatus       `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	DueDate           time.Time       `gorm:"column:due_date;not null"`
	Adjustments       []FeeAdjustment `gorm:"foreignKey:StudentFeeID"`
	Payments          []Payment       `gorm:"foreignKey:StudentFeeID"`
	CreatedAt         time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (StudentFee) TableName() string {
	return "student_fees"
}

// Recompute derives final amount, balance and status from the account's totals
// and the given sum of non-voided payments. Deterministic and idempotent:
// calling it twice with the same inputs yields the same outputs.
func (s *StudentFee) Recompute(paidTotal float64) {
	final := s.TotalAmount - s.DiscountAmount - s.ScholarshipAmount
	if final < 0 {
		final = 0
	}
	s.FinalAmount = final

	if paidTotal < 0 {
		paidTotal = 0
	}
	s.PaidAmount = paidTotal

	balance := final - paidTotal
	if balance < 0 {
		balance = 0
	}
	s.BalanceAmount = balance

	switch {
	case paidTotal == 0:
		s.Status = FeeStatusPending
	case paidTotal < final:
		s.Status = FeeStatusPartial
	default:
		s.Status = FeeStatusPaid
	}
}

// EffectiveStatus reclassifies an unpaid account past its due date as OVERDUE.
// Display-only: the stored status is untouched and payment is never blocked,
// so the reclassification reverses itself once the balance reaches zero.
func (s *StudentFee) EffectiveStatus(now time.Time) FeeStatus {
	if (s.Status == FeeStatusPending || s.Status == FeeStatusPartial) && now.After(s.DueDate) {
		return FeeStatusOverdue
	}
	return s.Status
}
