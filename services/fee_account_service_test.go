package services

import (
	"testing"

	"schoolpay/models"

	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func TestRefreshAccountDerivesFields(t *testing.T) {
	// Dry-run session: statements are built but never executed, so the refresh
	// path runs without a database and the payment sum stays zero
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true, SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open dry-run session: %v", err)
	}

	account := &models.StudentFee{
		ID:             5,
		TotalAmount:    9000,
		DiscountAmount: 1000,
		Student:        models.Student{ID: 9, FirstName: "Asha"},
	}

	if err := refreshAccount(db, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.FinalAmount != 8000 {
		t.Errorf("expected final amount 8000, got %v", account.FinalAmount)
	}
	if account.BalanceAmount != 8000 {
		t.Errorf("expected balance 8000, got %v", account.BalanceAmount)
	}
	if account.Status != models.FeeStatusPending {
		t.Errorf("expected status PENDING, got %v", account.Status)
	}
}
