package services

import (
	"errors"
	"fmt"
	"time"

	"schoolpay/models"
	"schoolpay/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptIssuer produces a receipt number unique within the institution's
// payment history. Implementations must issue inside the caller's transaction
// so a rolled-back payment never consumes a visible number gap.
type ReceiptIssuer interface {
	Issue(tx *gorm.DB, payment *models.Payment) (string, error)
}

// SequenceReceiptIssuer issues numbers of the form PREFIX-YEAR-NNNNNN-SIG from
// a per-year database sequence. SIG is a truncated HMAC over the number body so
// receipts can be verified offline.
type SequenceReceiptIssuer struct {
	prefix  string
	hmacKey string
}

// NewSequenceReceiptIssuer creates a new SequenceReceiptIssuer instance
func NewSequenceReceiptIssuer(prefix, hmacKey string) *SequenceReceiptIssuer {
	return &SequenceReceiptIssuer{
		prefix:  prefix,
		hmacKey: hmacKey,
	}
}

// Issue advances the year's sequence and returns the formatted receipt number
func (r *SequenceReceiptIssuer) Issue(tx *gorm.DB, payment *models.Payment) (string, error) {
	year := payment.PaidAt.Year()
	if year == 1 {
		year = time.Now().Year()
	}

	// Lock the sequence row; create it on first use of the year
	var seq models.ReceiptSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.ReceiptSequence{Year: year, LastValue: 0}
		if err := tx.Create(&seq).Error; err != nil {
			return "", errors.New("failed to create receipt sequence")
		}
	} else if err != nil {
		return "", errors.New("failed to load receipt sequence")
	}

	seq.LastValue++
	if err := tx.Save(&seq).Error; err != nil {
		return "", errors.New("failed to advance receipt sequence")
	}

	body := fmt.Sprintf("%s-%d-%06d", r.prefix, year, seq.LastValue)
	return body + "-" + utils.HMACSignature(body, r.hmacKey)[:8], nil
}

// VerifyReceiptNumber checks the HMAC suffix of a receipt number issued by
// SequenceReceiptIssuer
func VerifyReceiptNumber(receiptNumber, hmacKey string) bool {
	if len(receiptNumber) < 10 {
		return false
	}
	body := receiptNumber[:len(receiptNumber)-9]
	sig := receiptNumber[len(receiptNumber)-8:]
	if receiptNumber[len(receiptNumber)-9] != '-' {
		return false
	}
	return utils.VerifyHMACSignature(body, sig, hmacKey)
}
