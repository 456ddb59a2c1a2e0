package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignature computes a hex-encoded HMAC-SHA256 signature over data
func HMACSignature(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSignature checks a possibly truncated signature against the HMAC
// of data. Comparison is constant-time.
func VerifyHMACSignature(data, signature, key string) bool {
	if signature == "" {
		return false
	}
	expected := HMACSignature(data, key)
	if len(signature) > len(expected) {
		return false
	}
	return hmac.Equal([]byte(expected[:len(signature)]), []byte(signature))
}
