package utils

import (
	"testing"
)

func TestHMACSignatureDeterministic(t *testing.T) {
	a := HMACSignature("payload", "key")
	b := HMACSignature("payload", "key")
	if a != b {
		t.Errorf("expected identical signatures, got %s and %s", a, b)
	}
	if HMACSignature("payload", "other-key") == a {
		t.Error("expected different keys to produce different signatures")
	}
}

func TestVerifyHMACSignature(t *testing.T) {
	sig := HMACSignature("payload", "key")

	if !VerifyHMACSignature("payload", sig, "key") {
		t.Error("expected full signature to verify")
	}
	if !VerifyHMACSignature("payload", sig[:8], "key") {
		t.Error("expected truncated signature to verify")
	}
	if VerifyHMACSignature("payload", sig, "other-key") {
		t.Error("expected wrong key to fail")
	}
	if VerifyHMACSignature("other-payload", sig, "key") {
		t.Error("expected wrong payload to fail")
	}
	if VerifyHMACSignature("payload", "", "key") {
		t.Error("expected empty signature to fail")
	}
}
