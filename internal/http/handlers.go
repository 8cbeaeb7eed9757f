package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wilsharo/lead-filter-api/internal/lead"
	"github.com/wilsharo/lead-filter-api/internal/metrics"
	"github.com/wilsharo/lead-filter-api/internal/verify"
	cfg "github.com/wilsharo/lead-filter-api/pkg/config"
)

type Env struct {
	Cfg      cfg.Config
	Verifier *verify.Verifier
	Velocity lead.VelocityTracker
	Metrics  *metrics.Metrics
	HMACAuth *HMACAuth         // optional request signing
	Emit     func(lead.Record) // injected sink fan-out
}

func (e Env) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (e Env) Readyz(w http.ResponseWriter, r *http.Request) {
	// The upstream provider is polled lazily; nothing to probe here beyond
	// process liveness.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// POST /isGenuineLead/ — verifies a single lead submission.
func (e Env) VerifyLead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		http.Error(w, "content-type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, e.Cfg.MaxBodyBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	if e.HMACAuth != nil && !e.HMACAuth.VerifyRequest(r, body) {
		http.Error(w, "invalid or missing HMAC signature", http.StatusUnauthorized)
		return
	}

	var sub lead.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := sub.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	clientIP, err := lead.ResolveClientIP(r, &sub, e.Cfg.TrustProxy)
	if err != nil {
		e.countVerification("no_client_ip")
		writeJSON(w, http.StatusBadRequest, verify.Verdict{
			IsGenuine: false,
			Reason:    "Could not determine client IP address.",
		})
		return
	}

	outcome := e.Verifier.Verify(r.Context(), &sub, clientIP)
	e.recordOutcome(outcome)

	if e.Emit != nil {
		e.Emit(e.buildRecord(clientIP, &sub, outcome))
	}

	writeJSON(w, outcome.Status, outcome.Verdict)
}

// buildRecord assembles the audit record for sink fan-out.
func (e Env) buildRecord(clientIP string, sub *lead.Submission, outcome verify.Outcome) lead.Record {
	rec := lead.NewRecord(clientIP, sub)
	rec.IsGenuine = outcome.Verdict.IsGenuine
	rec.Reason = outcome.Verdict.Reason

	if res := outcome.Result; res != nil {
		rec.FraudScore = res.FraudScore
		rec.CountryCode = res.CountryCode
		rec.Region = res.Region
		rec.Proxy = res.Proxy
		rec.VPN = res.VPN
		rec.Tor = res.Tor
		rec.CacheHit = res.FromCache
	}

	if e.Velocity != nil {
		if interval, seen := lead.RepeatInterval(e.Velocity, clientIP, time.Now()); seen {
			rec.RepeatWithin = interval
		}
	}
	return rec
}

func (e Env) recordOutcome(outcome verify.Outcome) {
	switch {
	case outcome.Status == http.StatusBadGateway:
		e.countVerification("upstream_error")
		e.countIPQS("error")
	case outcome.Status == http.StatusServiceUnavailable:
		e.countVerification("not_configured")
	case outcome.Verdict.IsGenuine:
		e.countVerification("genuine")
		e.countIPQS("ok")
	default:
		e.countVerification("rejected")
		if outcome.Result != nil {
			e.countIPQS("ok")
		}
	}
}

func (e Env) countVerification(outcome string) {
	if e.Metrics != nil {
		e.Metrics.IncrementVerifications(outcome)
	}
}

func (e Env) countIPQS(status string) {
	if e.Metrics != nil {
		e.Metrics.IncrementIPQSRequests(status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
