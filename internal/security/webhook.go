package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const HeaderWebhookSignature = "X-Paintsnap-Signature"

// SignWebhookBody computes the HMAC-SHA256 signature commerce providers
// attach to callback bodies.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateWebhookSignature checks a provider callback signature in
// constant time.
func ValidateWebhookSignature(secret string, signature string, body []byte) bool {
	expected := SignWebhookBody(secret, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}
