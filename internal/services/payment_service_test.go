package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"dukan/internal/config"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRazorpay(t *testing.T) {
	svc := NewPaymentService(config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "rzp-secret"})
	assert.Equal(t, "rzp_test_key", svc.PublicKey())

	good := sign("rzp-secret", "order_1", "pay_1")
	assert.NoError(t, svc.VerifyRazorpay("order_1", "pay_1", good))

	requireCode(t, svc.VerifyRazorpay("order_1", "pay_2", good), http.StatusBadRequest)
	requireCode(t, svc.VerifyRazorpay("order_1", "pay_1", sign("wrong", "order_1", "pay_1")), http.StatusBadRequest)
	requireCode(t, svc.VerifyRazorpay("", "pay_1", good), http.StatusBadRequest)

	unconfigured := NewPaymentService(config.RazorpayConfig{})
	requireCode(t, unconfigured.VerifyRazorpay("order_1", "pay_1", good), http.StatusInternalServerError)
}
