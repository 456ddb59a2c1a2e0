package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"schoolpay/models"
)

func TestValidateCollectRequestMissingTransactionID(t *testing.T) {
	// Electronic methods require a transaction identifier before anything is persisted
	for _, method := range []models.PaymentMethod{
		models.PaymentMethodUPI,
		models.PaymentMethodCard,
		models.PaymentMethodBankTransfer,
		models.PaymentMethodOnline,
		models.PaymentMethodNetBanking,
	} {
		err := validateCollectRequest(CollectPaymentDTO{
			StudentFeeID:  1,
			Amount:        1000,
			PaymentMethod: method,
		})
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Errorf("method %s: expected MissingFieldError, got %v", method, err)
			continue
		}
		if missing.Field != "transaction_id" {
			t.Errorf("method %s: expected transaction_id, got %s", method, missing.Field)
		}
	}
}

func TestValidateCollectRequestMissingReferenceNumber(t *testing.T) {
	for _, method := range []models.PaymentMethod{
		models.PaymentMethodCheque,
		models.PaymentMethodDemandDraft,
	} {
		err := validateCollectRequest(CollectPaymentDTO{
			StudentFeeID:  1,
			Amount:        1000,
			PaymentMethod: method,
		})
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Errorf("method %s: expected MissingFieldError, got %v", method, err)
			continue
		}
		if missing.Field != "reference_number" {
			t.Errorf("method %s: expected reference_number, got %s", method, missing.Field)
		}
	}
}

func TestValidateCollectRequestUnknownMethod(t *testing.T) {
	err := validateCollectRequest(CollectPaymentDTO{
		StudentFeeID:  1,
		Amount:        1000,
		PaymentMethod: "BARTER",
	})
	var invalid *InvalidMethodError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidMethodError, got %v", err)
	}
}

func TestValidateCollectRequestNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -500} {
		err := validateCollectRequest(CollectPaymentDTO{
			StudentFeeID:  1,
			Amount:        amount,
			PaymentMethod: models.PaymentMethodCash,
		})
		var invalid *InvalidAmountError
		if !errors.As(err, &invalid) {
			t.Errorf("amount %v: expected InvalidAmountError, got %v", amount, err)
		}
	}
}

func TestValidateCollectRequestCashNeedsNoExtras(t *testing.T) {
	err := validateCollectRequest(CollectPaymentDTO{
		StudentFeeID:  1,
		Amount:        1000,
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckAgainstAccountExceedsBalance(t *testing.T) {
	// finalAmount=9000, paid=3000 => balance=6000; paying 7000 must be rejected
	account := &models.StudentFee{TotalAmount: 9000}
	account.Recompute(3000)

	err := checkAgainstAccount(7000, account)
	var invalid *InvalidAmountError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}
	if invalid.Balance != 6000 {
		t.Errorf("expected balance 6000 in error, got %v", invalid.Balance)
	}

	// The account is left untouched
	if account.BalanceAmount != 6000 || account.Status != models.FeeStatusPartial {
		t.Errorf("account changed by a rejected check: %+v", account)
	}
}

func TestCheckAgainstAccountPaidIsTerminal(t *testing.T) {
	account := &models.StudentFee{TotalAmount: 9000}
	account.Recompute(9000)

	err := checkAgainstAccount(1, account)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError, got %v", err)
	}
}

func TestCheckAgainstAccountFullBalanceAllowed(t *testing.T) {
	account := &models.StudentFee{TotalAmount: 9000}
	account.Recompute(0)

	if err := checkAgainstAccount(9000, account); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCollectZeroAmountReturnsInvalidAmount(t *testing.T) {
	// The amount rule, including exactly zero, belongs to the typed taxonomy;
	// a rejection must never surface as a generic validation failure
	s := NewPaymentService(nil, nil, nil)

	for _, amount := range []float64{0, -500} {
		_, err := s.Collect(CollectPaymentDTO{
			StudentFeeID:  1,
			Amount:        amount,
			PaymentMethod: models.PaymentMethodCash,
		})
		var invalid *InvalidAmountError
		if !errors.As(err, &invalid) {
			t.Errorf("amount %v: expected InvalidAmountError, got %v", amount, err)
		}
	}
}

func TestAccountLockSerializesCollections(t *testing.T) {
	s := &PaymentService{locks: make(map[uint]*accountLock)}

	// Concurrent critical sections on one account must not interleave
	var inside, maxInside int
	var observer sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.acquireAccount(7)
			defer s.releaseAccount(7)

			observer.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			observer.Unlock()

			observer.Lock()
			inside--
			observer.Unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most one goroutine inside the account section, saw %d", maxInside)
	}

	// Once the last holder leaves, the lock table entry is dropped
	if len(s.locks) != 0 {
		t.Errorf("expected empty lock table after release, has %d entries", len(s.locks))
	}
}

func TestAccountLocksIndependentAcrossAccounts(t *testing.T) {
	s := &PaymentService{locks: make(map[uint]*accountLock)}

	s.acquireAccount(7)
	done := make(chan struct{})
	go func() {
		s.acquireAccount(8)
		s.releaseAccount(8)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different account blocked")
	}

	s.releaseAccount(7)
	if len(s.locks) != 0 {
		t.Errorf("expected empty lock table after release, has %d entries", len(s.locks))
	}
}

func TestConcurrentFullBalanceCollectsOnlyOneSucceeds(t *testing.T) {
	// Two collectors race to pay the full balance; under the account lock the
	// second must observe the settled account and fail with ConflictError
	s := &PaymentService{locks: make(map[uint]*accountLock)}
	account := &models.StudentFee{ID: 7, TotalAmount: 9000}
	account.Recompute(0)

	var successes, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.acquireAccount(account.ID)
			defer s.releaseAccount(account.ID)

			if err := checkAgainstAccount(9000, account); err != nil {
				var conflict *ConflictError
				if errors.As(err, &conflict) {
					atomic.AddInt32(&conflicts, 1)
				}
				return
			}
			account.Recompute(account.PaidAmount + 9000)
			atomic.AddInt32(&successes, 1)
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != 1 {
		t.Errorf("expected exactly one success and one conflict, got %d and %d", successes, conflicts)
	}
	if account.Status != models.FeeStatusPaid || account.BalanceAmount != 0 {
		t.Errorf("expected settled account, got status %v balance %v", account.Status, account.BalanceAmount)
	}
}

// notifierRecorder captures guardian notifications for assertions
type notifierRecorder struct {
	mu       sync.Mutex
	receipts []string
	settled  []uint
}

func (r *notifierRecorder) SendReceiptNotification(to, receiptNumber string, amount, balance float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, receiptNumber)
	return nil
}

func (r *notifierRecorder) SendAccountSettledNotification(to string, studentFeeID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled = append(r.settled, studentFeeID)
	return nil
}

func TestNotifyCollectionSendsSettledNotice(t *testing.T) {
	recorder := &notifierRecorder{}
	s := &PaymentService{email: recorder, locks: make(map[uint]*accountLock)}

	account := &models.StudentFee{
		ID:          7,
		TotalAmount: 9000,
		Student:     models.Student{GuardianEmail: "guardian@example.com"},
	}
	account.Recompute(9000)
	payment := &models.Payment{ReceiptNumber: "RCPT-2025-000001-deadbeef", Amount: 9000}

	s.notifyCollection(account, payment)

	if len(recorder.receipts) != 1 || recorder.receipts[0] != payment.ReceiptNumber {
		t.Errorf("expected one receipt notification, got %v", recorder.receipts)
	}
	if len(recorder.settled) != 1 || recorder.settled[0] != account.ID {
		t.Errorf("expected settled notice for account %d, got %v", account.ID, recorder.settled)
	}
}

func TestNotifyCollectionPartialSkipsSettledNotice(t *testing.T) {
	recorder := &notifierRecorder{}
	s := &PaymentService{email: recorder, locks: make(map[uint]*accountLock)}

	account := &models.StudentFee{
		ID:          7,
		TotalAmount: 9000,
		Student:     models.Student{GuardianEmail: "guardian@example.com"},
	}
	account.Recompute(3000)
	payment := &models.Payment{ReceiptNumber: "RCPT-2025-000002-deadbeef", Amount: 3000}

	s.notifyCollection(account, payment)

	if len(recorder.receipts) != 1 {
		t.Errorf("expected one receipt notification, got %v", recorder.receipts)
	}
	if len(recorder.settled) != 0 {
		t.Errorf("expected no settled notice for a partial payment, got %v", recorder.settled)
	}
}

func TestNotifyCollectionWithoutGuardianEmail(t *testing.T) {
	recorder := &notifierRecorder{}
	s := &PaymentService{email: recorder, locks: make(map[uint]*accountLock)}

	account := &models.StudentFee{ID: 7, TotalAmount: 9000}
	account.Recompute(9000)

	s.notifyCollection(account, &models.Payment{ReceiptNumber: "RCPT-2025-000003-deadbeef"})

	if len(recorder.receipts) != 0 || len(recorder.settled) != 0 {
		t.Error("expected no notifications without a guardian email")
	}
}
