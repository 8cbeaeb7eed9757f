package httpx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-LeadFilter-HMAC"

// HMACAuth verifies shared-secret signatures on verification requests.
// Lead sources submitting server-to-server sign the body with the secret.
type HMACAuth struct {
	secret []byte
}

func NewHMACAuth(secret string) *HMACAuth {
	return &HMACAuth{secret: []byte(secret)}
}

// Sign computes the signature for a body. Exposed for clients and tests.
func (h *HMACAuth) Sign(body []byte) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyRequest checks the signature header against the body.
func (h *HMACAuth) VerifyRequest(r *http.Request, body []byte) bool {
	got := r.Header.Get(SignatureHeader)
	if got == "" {
		return false
	}
	want, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hmac.Equal(want, mac.Sum(nil))
}
