package models

import (
	"time"
)

// AdjustmentKind distinguishes discounts from scholarships
type AdjustmentKind string

const (
	AdjustmentKindDiscount    AdjustmentKind = "DISCOUNT"
	AdjustmentKindScholarship AdjustmentKind = "SCHOLARSHIP"
)

// DiscountType represents how an adjustment value is interpreted
type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "FIXED"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
)

// FeeAdjustment represents a discount or scholarship attached to a student fee
// account. DiscountAmount is computed from the type and value against the
// account's total at application time and does not change afterwards.
type FeeAdjustment struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	StudentFeeID   uint           `gorm:"column:student_fee_id;not null;index"`
	Kind           AdjustmentKind `gorm:"column:kind;type:varchar(20);not null"`
	Name           string         `gorm:"column:name;not null;size:100"`
	DiscountType   DiscountType   `gorm:"column:discount_type;type:varchar(20);not null"`
	DiscountValue  float64        `gorm:"column:discount_value;type:decimal(12,2);not null"`
	DiscountAmount float64        `gorm:"column:discount_amount;type:decimal(12,2);not null"`
	Reason         string         `gorm:"column:reason;size:255"`
	CreatedAt      time.Time      `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (FeeAdjustment) TableName() string {
	return "fee_adjustments"
}

// IsValid reports whether the kind is known
func (k AdjustmentKind) IsValid() bool {
	return k == AdjustmentKindDiscount || k == AdjustmentKindScholarship
}

// IsValid reports whether the discount type is known
func (t DiscountType) IsValid() bool {
	return t == DiscountTypeFixed || t == DiscountTypePercentage
}
