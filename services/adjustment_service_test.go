package services

import (
	"errors"
	"testing"

	"schoolpay/models"
)

func TestApplyAdjustmentsFixed(t *testing.T) {
	amounts, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindDiscount, Name: "Sibling discount", Type: models.DiscountTypeFixed, Value: 1000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(amounts) != 1 || amounts[0] != 1000 {
		t.Errorf("expected [1000], got %v", amounts)
	}
}

func TestApplyAdjustmentsPercentage(t *testing.T) {
	amounts, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindScholarship, Name: "Merit scholarship", Type: models.DiscountTypePercentage, Value: 25},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amounts[0] != 2500 {
		t.Errorf("expected 2500, got %v", amounts[0])
	}
}

func TestApplyAdjustmentsMixed(t *testing.T) {
	amounts, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindDiscount, Name: "Early bird", Type: models.DiscountTypeFixed, Value: 1500},
		{Kind: models.AdjustmentKindScholarship, Name: "Merit", Type: models.DiscountTypePercentage, Value: 10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amounts[0] != 1500 || amounts[1] != 1000 {
		t.Errorf("expected [1500 1000], got %v", amounts)
	}
}

func TestApplyAdjustmentsExceedTotal(t *testing.T) {
	// discount 6000 + scholarship 5000 on total 10000 must be rejected
	_, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindDiscount, Name: "Staff discount", Type: models.DiscountTypeFixed, Value: 6000},
		{Kind: models.AdjustmentKindScholarship, Name: "Full scholarship", Type: models.DiscountTypeFixed, Value: 5000},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestApplyAdjustmentsExactTotal(t *testing.T) {
	// Reductions equal to the total are allowed
	amounts, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindScholarship, Name: "Full scholarship", Type: models.DiscountTypePercentage, Value: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amounts[0] != 10000 {
		t.Errorf("expected 10000, got %v", amounts[0])
	}
}

func TestApplyAdjustmentsInvalidValue(t *testing.T) {
	_, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindDiscount, Name: "Broken", Type: models.DiscountTypeFixed, Value: 0},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError for zero value, got %v", err)
	}
}

func TestApplyAdjustmentsUnknownType(t *testing.T) {
	_, err := ApplyAdjustments(10000, []AdjustmentRequest{
		{Kind: models.AdjustmentKindDiscount, Name: "Broken", Type: "RELATIVE", Value: 10},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError for unknown type, got %v", err)
	}
}

func TestApplyAdjustmentsEmpty(t *testing.T) {
	amounts, err := ApplyAdjustments(10000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(amounts) != 0 {
		t.Errorf("expected no amounts, got %v", amounts)
	}
}
