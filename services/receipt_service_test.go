package services

import (
	"testing"

	"schoolpay/utils"
)

func TestVerifyReceiptNumber(t *testing.T) {
	key := "test-receipt-key"
	body := "RCPT-2025-000042"
	number := body + "-" + utils.HMACSignature(body, key)[:8]

	if !VerifyReceiptNumber(number, key) {
		t.Errorf("expected %s to verify", number)
	}
}

func TestVerifyReceiptNumberTampered(t *testing.T) {
	key := "test-receipt-key"
	body := "RCPT-2025-000042"
	number := body + "-" + utils.HMACSignature(body, key)[:8]

	// A changed sequence invalidates the signature
	tampered := "RCPT-2025-000043" + number[len(body):]
	if VerifyReceiptNumber(tampered, key) {
		t.Errorf("expected tampered number %s to fail verification", tampered)
	}

	// A wrong key fails too
	if VerifyReceiptNumber(number, "other-key") {
		t.Error("expected verification with wrong key to fail")
	}
}

func TestVerifyReceiptNumberMalformed(t *testing.T) {
	for _, number := range []string{"", "RCPT", "RCPT-2025-000042", "RCPT-2025-000042_deadbeef"} {
		if VerifyReceiptNumber(number, "key") {
			t.Errorf("expected malformed number %q to fail verification", number)
		}
	}
}
