package order

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/brightkids/activity-booking-backend/config"
)

// Gateway abstracts the payment provider. The engine only ever needs a
// gateway order ref at checkout and a verified PaymentConfirmation on
// the way back in.
type Gateway interface {
	CreatePaymentOrder(amount float64, receipt string, notes map[string]interface{}) (string, error)
	VerifySignature(gatewayOrderRef, paymentRef, signature string) bool
}

type razorpayGateway struct {
	client *razorpay.Client
	secret string
}

func NewRazorpayGateway(cfg *config.Config) Gateway {
	return &razorpayGateway{
		client: razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret),
		secret: cfg.RazorpaySecret,
	}
}

// CreatePaymentOrder registers the amount with Razorpay and returns the
// gateway order id the client pays against.
func (g *razorpayGateway) CreatePaymentOrder(amount float64, receipt string, notes map[string]interface{}) (string, error) {
	amountInPaise := int(amount * 100)

	data := map[string]interface{}{
		"amount":          amountInPaise,
		"currency":        "GBP",
		"receipt":         receipt,
		"payment_capture": 1,
		"notes":           notes,
	}

	rzpOrder, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := rzpOrder["id"].(string)
	if !ok {
		return "", errors.New("unable to extract order_id from Razorpay response")
	}
	return orderID, nil
}

// VerifySignature checks the webhook HMAC: SHA256 over
// "<order_id>|<payment_id>" keyed with the gateway secret.
func (g *razorpayGateway) VerifySignature(gatewayOrderRef, paymentRef, signature string) bool {
	return verifyHMAC(g.secret, gatewayOrderRef, paymentRef, signature)
}

func verifyHMAC(secret, gatewayOrderRef, paymentRef, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
