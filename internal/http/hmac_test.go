package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHMACAuthSignAndVerify(t *testing.T) {
	auth := NewHMACAuth("test-secret")
	body := []byte(`{"submitted_state":"NY"}`)

	sig := auth.Sign(body)
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(sig))
	}

	r := httptest.NewRequest(http.MethodPost, "/isGenuineLead/", strings.NewReader(string(body)))
	r.Header.Set(SignatureHeader, sig)
	if !auth.VerifyRequest(r, body) {
		t.Error("valid signature should verify")
	}
}

func TestHMACAuthRejects(t *testing.T) {
	auth := NewHMACAuth("test-secret")
	body := []byte(`{"submitted_state":"NY"}`)

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/isGenuineLead/", nil)
		if auth.VerifyRequest(r, body) {
			t.Error("missing header must not verify")
		}
	})

	t.Run("non-hex header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/isGenuineLead/", nil)
		r.Header.Set(SignatureHeader, "zzzz")
		if auth.VerifyRequest(r, body) {
			t.Error("non-hex signature must not verify")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewHMACAuth("other-secret")
		r := httptest.NewRequest(http.MethodPost, "/isGenuineLead/", nil)
		r.Header.Set(SignatureHeader, other.Sign(body))
		if auth.VerifyRequest(r, body) {
			t.Error("signature from a different secret must not verify")
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/isGenuineLead/", nil)
		r.Header.Set(SignatureHeader, auth.Sign(body))
		if auth.VerifyRequest(r, []byte(`{"submitted_state":"CA"}`)) {
			t.Error("tampered body must not verify")
		}
	})
}
