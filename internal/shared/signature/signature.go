package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Package signature is the shared payload-authentication contract.
// Outbound fan-out signs webhook bodies with it and inbound ingestion
// verifies claimed signatures against the same secret.

// Sign computes the lowercase hex HMAC-SHA256 digest of payload under secret.
func Sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the HMAC-SHA256 digest of payload
// under secret. The comparison is constant time; execution does not depend
// on where the first mismatching byte occurs.
func Verify(payload []byte, signature string, secret []byte) bool {
	claimed, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(claimed, mac.Sum(nil))
}
