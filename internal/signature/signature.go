// Package signature proves that a payment confirmation really came from the
// gateway: the gateway signs "gatewayOrderID|paymentID" with the merchant's
// key secret, and a client cannot forge that without the secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns hex(HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID)).
func (v *Verifier) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the claimed signature against the expected one in constant
// time. Callers must reject empty inputs before getting here; Verify itself
// has no side effects.
func (v *Verifier) Verify(gatewayOrderID, paymentID, claimed string) bool {
	expected := v.Sign(gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(claimed))
}
