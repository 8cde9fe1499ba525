package order

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signFor(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHMACAcceptsValidSignature(t *testing.T) {
	secret := "test-secret"
	sig := signFor(secret, "order_abc", "pay_123")

	assert.True(t, verifyHMAC(secret, "order_abc", "pay_123", sig))
}

func TestVerifyHMACRejectsTamperedPayload(t *testing.T) {
	secret := "test-secret"
	sig := signFor(secret, "order_abc", "pay_123")

	assert.False(t, verifyHMAC(secret, "order_abc", "pay_999", sig))
	assert.False(t, verifyHMAC(secret, "order_xyz", "pay_123", sig))
	assert.False(t, verifyHMAC("other-secret", "order_abc", "pay_123", sig))
}

func TestVerifyHMACRejectsGarbageSignature(t *testing.T) {
	assert.False(t, verifyHMAC("test-secret", "order_abc", "pay_123", "not-a-signature"))
	assert.False(t, verifyHMAC("test-secret", "order_abc", "pay_123", ""))
}
