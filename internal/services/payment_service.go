package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"dukan/internal/apperror"
	"dukan/internal/config"
)

// PaymentService checks gateway callbacks. Checkout itself happens on the
// gateway's hosted page.
type PaymentService struct {
	keyID     string
	keySecret []byte
}

func NewPaymentService(cfg config.RazorpayConfig) *PaymentService {
	return &PaymentService{keyID: cfg.KeyID, keySecret: []byte(cfg.KeySecret)}
}

// PublicKey is the key id the client needs to open the checkout.
func (s *PaymentService) PublicKey() string { return s.keyID }

// VerifyRazorpay checks that signature is the hex HMAC-SHA256 of
// "orderID|paymentID" under the key secret.
func (s *PaymentService) VerifyRazorpay(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return apperror.BadRequest("Payment verification details are required")
	}
	if len(s.keySecret) == 0 {
		return apperror.Internal("Payment gateway is not configured", nil)
	}

	mac := hmac.New(sha256.New, s.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperror.BadRequest("Invalid payment signature")
	}
	return nil
}
