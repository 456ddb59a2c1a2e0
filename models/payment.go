package models

import (
	"time"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
	PaymentMethodNetBanking   PaymentMethod = "NET_BANKING"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodDemandDraft  PaymentMethod = "DEMAND_DRAFT"
)

// PaymentStatus represents the lifecycle state of a payment record
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusVoided    PaymentStatus = "VOIDED"
)

// Payment represents money collected against a student fee account. Rows are
// immutable after creation; corrections go through a compensating
// PaymentReversal, never through edits.
type Payment struct {
	ID              uint          `gorm:"primaryKey;autoIncrement"`
	StudentFeeID    uint          `gorm:"column:student_fee_id;not null;index"`
	StudentFee      StudentFee    `gorm:"foreignKey:StudentFeeID"`
	Amount          float64       `gorm:"column:amount;type:decimal(12,2);not null"`
	PaymentMethod   PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	TransactionID   *string       `gorm:"column:transaction_id;size:100;index"`
	ReferenceNumber *string       `gorm:"column:reference_number;size:100"`
	BankName        *string       `gorm:"column:bank_name;size:100"`
	ReceiptNumber   string        `gorm:"column:receipt_number;unique;not null;size:50"`
	Status          PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'COMPLETED'"`
	PaidAt          time.Time     `gorm:"column:paid_at;not null"`
	CollectedByID   uint          `gorm:"column:collected_by_id;index"`
	Remarks         string        `gorm:"column:remarks;size:255"`
	CreatedAt       time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsValid reports whether the method is one of the accepted payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard,
		PaymentMethodBankTransfer, PaymentMethodOnline, PaymentMethodNetBanking,
		PaymentMethodCheque, PaymentMethodDemandDraft:
		return true
	}
	return false
}

// RequiresTransactionID reports whether the method needs an electronic
// transaction identifier
func (m PaymentMethod) RequiresTransactionID() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodOnline, PaymentMethodNetBanking:
		return true
	}
	return false
}

// RequiresReferenceNumber reports whether the method needs an instrument
// reference number
func (m PaymentMethod) RequiresReferenceNumber() bool {
	return m == PaymentMethodCheque || m == PaymentMethodDemandDraft
}

// PaymentReversal represents the compensating entry for a voided payment
type PaymentReversal struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	PaymentID  uint      `gorm:"column:payment_id;unique;not null"`
	Payment    Payment   `gorm:"foreignKey:PaymentID"`
	Amount     float64   `gorm:"column:amount;type:decimal(12,2);not null"`
	Reason     string    `gorm:"column:reason;not null;size:255"`
	ReversedBy uint      `gorm:"column:reversed_by;index"`
	CreatedAt  time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (PaymentReversal) TableName() string {
	return "payment_reversals"
}

// ReceiptSequence backs receipt number generation; one row per calendar year,
// advanced inside the payment transaction
type ReceiptSequence struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	Year      int   `gorm:"column:year;unique;not null"`
	LastValue int64 `gorm:"column:last_value;not null;default:0"`
}

func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}
