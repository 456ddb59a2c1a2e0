package models

import (
	"testing"
	"time"
)

func TestRecomputeWithDiscount(t *testing.T) {
	// totalAmount=10000, discount=1000 => finalAmount=9000
	fee := &StudentFee{
		TotalAmount:    10000,
		DiscountAmount: 1000,
	}
	fee.Recompute(0)

	if fee.FinalAmount != 9000 {
		t.Errorf("expected final amount 9000, got %v", fee.FinalAmount)
	}
	if fee.BalanceAmount != 9000 {
		t.Errorf("expected balance 9000, got %v", fee.BalanceAmount)
	}
	if fee.Status != FeeStatusPending {
		t.Errorf("expected status PENDING, got %v", fee.Status)
	}

	// Full payment settles the account
	fee.Recompute(9000)
	if fee.Status != FeeStatusPaid {
		t.Errorf("expected status PAID, got %v", fee.Status)
	}
	if fee.BalanceAmount != 0 {
		t.Errorf("expected balance 0, got %v", fee.BalanceAmount)
	}
}

func TestRecomputePartialThenPaid(t *testing.T) {
	fee := &StudentFee{TotalAmount: 9000}

	fee.Recompute(3000)
	if fee.Status != FeeStatusPartial {
		t.Errorf("expected status PARTIAL, got %v", fee.Status)
	}
	if fee.BalanceAmount != 6000 {
		t.Errorf("expected balance 6000, got %v", fee.BalanceAmount)
	}

	fee.Recompute(9000)
	if fee.Status != FeeStatusPaid {
		t.Errorf("expected status PAID, got %v", fee.Status)
	}
	if fee.BalanceAmount != 0 {
		t.Errorf("expected balance 0, got %v", fee.BalanceAmount)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	fee := &StudentFee{
		TotalAmount:       12000,
		DiscountAmount:    1000,
		ScholarshipAmount: 2000,
	}

	fee.Recompute(4500)
	first := *fee

	fee.Recompute(4500)
	if fee.FinalAmount != first.FinalAmount ||
		fee.PaidAmount != first.PaidAmount ||
		fee.BalanceAmount != first.BalanceAmount ||
		fee.Status != first.Status {
		t.Errorf("recompute is not idempotent: first %+v, second %+v", first, fee)
	}
}

func TestRecomputeNeverNegative(t *testing.T) {
	// Reductions larger than the total clamp final amount at zero
	fee := &StudentFee{
		TotalAmount:       1000,
		DiscountAmount:    800,
		ScholarshipAmount: 500,
	}
	fee.Recompute(0)

	if fee.FinalAmount != 0 {
		t.Errorf("expected final amount clamped to 0, got %v", fee.FinalAmount)
	}
	if fee.BalanceAmount != 0 {
		t.Errorf("expected balance clamped to 0, got %v", fee.BalanceAmount)
	}
}

func TestStatusMonotonicUnderPayments(t *testing.T) {
	fee := &StudentFee{TotalAmount: 9000}

	order := map[FeeStatus]int{
		FeeStatusPending: 0,
		FeeStatusPartial: 1,
		FeeStatusPaid:    2,
	}

	previous := -1
	for _, paid := range []float64{0, 1000, 4500, 8999, 9000} {
		fee.Recompute(paid)
		current, ok := order[fee.Status]
		if !ok {
			t.Fatalf("unexpected status %v at paid %v", fee.Status, paid)
		}
		if current < previous {
			t.Errorf("status regressed at paid %v: %v", paid, fee.Status)
		}
		previous = current
	}

	if fee.Status != FeeStatusPaid {
		t.Errorf("expected final status PAID, got %v", fee.Status)
	}
}

func TestEffectiveStatusOverdue(t *testing.T) {
	now := time.Now()
	fee := &StudentFee{TotalAmount: 9000, DueDate: now.Add(-24 * time.Hour)}
	fee.Recompute(3000)

	// Unpaid past the due date reads as OVERDUE
	if got := fee.EffectiveStatus(now); got != FeeStatusOverdue {
		t.Errorf("expected effective status OVERDUE, got %v", got)
	}
	// The stored status is untouched
	if fee.Status != FeeStatusPartial {
		t.Errorf("expected stored status PARTIAL, got %v", fee.Status)
	}

	// Settling the account reverses the reclassification
	fee.Recompute(9000)
	if got := fee.EffectiveStatus(now); got != FeeStatusPaid {
		t.Errorf("expected effective status PAID, got %v", got)
	}
}

func TestEffectiveStatusBeforeDueDate(t *testing.T) {
	now := time.Now()
	fee := &StudentFee{TotalAmount: 9000, DueDate: now.Add(24 * time.Hour)}
	fee.Recompute(0)

	if got := fee.EffectiveStatus(now); got != FeeStatusPending {
		t.Errorf("expected effective status PENDING, got %v", got)
	}
}
