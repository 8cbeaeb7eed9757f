// Package verify holds the co-registration filtering rules that decide
// whether a submitted lead looks genuine.
package verify

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/wilsharo/lead-filter-api/internal/ipqs"
	"github.com/wilsharo/lead-filter-api/internal/lead"
)

// Verdict is the response body of the verification endpoint.
type Verdict struct {
	IsGenuine bool           `json:"is_genuine"`
	Reason    string         `json:"reason,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Outcome pairs the verdict with transport-level context the handler and
// audit trail need.
type Outcome struct {
	Verdict Verdict
	Result  *ipqs.Result // nil when no upstream lookup completed
	Status  int          // HTTP status the verdict should ride on
}

// minTimeOnPage is the co-registration floor: a real visitor spends more
// than 2 seconds on the form.
const minTimeOnPage = 2

// Verifier runs the rule chain. A nil Client means the scoring provider is
// not configured; verification then fails closed.
type Verifier struct {
	Client ipqs.Client
}

func NewVerifier(client ipqs.Client) *Verifier {
	return &Verifier{Client: client}
}

// Verify evaluates the rule chain in order and stops at the first failing
// rule. Only rules 3 and 4 (credential, upstream reachability) change the
// HTTP status; policy rejections are 200s with is_genuine=false.
func (v *Verifier) Verify(ctx context.Context, sub *lead.Submission, clientIP string) Outcome {
	timeOnPage := 0
	if sub.TimeOnPage != nil {
		timeOnPage = *sub.TimeOnPage
	}

	// 1. Time on page must exceed the floor; no upstream call for bots that
	// submit instantly.
	if timeOnPage <= minTimeOnPage {
		return Outcome{
			Status: http.StatusOK,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    "Low time on page.",
				Details: map[string]any{
					"time_on_page": timeOnPage,
					"requirement":  "> 2 seconds",
				},
			},
		}
	}

	// 2. Fail closed when the scoring provider is not configured.
	if v.Client == nil {
		log.Printf("verify: IPQualityScore API key not configured, rejecting lead from %s", clientIP)
		return Outcome{
			Status: http.StatusServiceUnavailable,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    "IP validation service not configured (API key missing). Cannot verify IP-related criteria.",
				Details:   map[string]any{"client_ip": clientIP},
			},
		}
	}

	// 3. Reputation and geolocation from the provider.
	res, err := v.Client.Lookup(ctx, clientIP, sub.UserAgent)
	if err != nil {
		log.Printf("verify: IPQS lookup failed for %s: %v", clientIP, err)
		reason := "IP validation service request exception."
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "Timeout") || strings.Contains(err.Error(), "deadline exceeded") {
			reason = "IP validation service timed out."
		}
		return Outcome{
			Status: http.StatusBadGateway,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    reason,
				Details:   map[string]any{"client_ip": clientIP},
			},
		}
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Unknown error from IPQualityScore"
		}
		log.Printf("verify: IPQS error for %s: %s", clientIP, msg)
		return Outcome{
			Status: http.StatusOK,
			Result: res,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    "IP validation failed: " + msg,
				Details:   map[string]any{"client_ip": clientIP},
			},
		}
	}

	// 4. No anonymizing infrastructure.
	if res.Proxy || res.VPN || res.Tor {
		var detected []string
		if res.Proxy {
			detected = append(detected, "proxy")
		}
		if res.VPN {
			detected = append(detected, "vpn")
		}
		if res.Tor {
			detected = append(detected, "tor")
		}
		return Outcome{
			Status: http.StatusOK,
			Result: res,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    capitalize(strings.Join(detected, ", ")) + " detected.",
				Details: map[string]any{
					"client_ip":   clientIP,
					"proxy":       res.Proxy,
					"vpn":         res.VPN,
					"tor":         res.Tor,
					"fraud_score": res.FraudScore,
				},
			},
		}
	}

	// 5. The IP must geolocate to the US.
	if res.CountryCode != "US" {
		return Outcome{
			Status: http.StatusOK,
			Result: res,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    "IP address is not from the U.S.",
				Details: map[string]any{
					"client_ip":       clientIP,
					"ip_country":      res.CountryCode,
					"ip_state":        res.Region,
					"submitted_state": sub.SubmittedState,
				},
			},
		}
	}

	// 6. Submitted state must be real and match the IP's state.
	submittedState := NormalizeState(sub.SubmittedState)
	ipState := NormalizeState(res.Region)

	if submittedState == "" {
		return Outcome{
			Status: http.StatusOK,
			Result: res,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    "Submitted state is not a valid U.S. state name or abbreviation.",
				Details: map[string]any{
					"client_ip":           clientIP,
					"submitted_state_raw": sub.SubmittedState,
					"ip_state_raw":        res.Region,
				},
			},
		}
	}

	if ipState == "" || ipState != submittedState {
		return Outcome{
			Status: http.StatusOK,
			Result: res,
			Verdict: Verdict{
				IsGenuine: false,
				Reason:    "IP address geolocation (state) does not match submitted U.S. state.",
				Details: map[string]any{
					"client_ip":                  clientIP,
					"ip_state_normalized":        ipState,
					"submitted_state_normalized": submittedState,
					"ip_state_raw":               res.Region,
					"submitted_state_raw":        sub.SubmittedState,
				},
			},
		}
	}

	return Outcome{
		Status: http.StatusOK,
		Result: res,
		Verdict: Verdict{
			IsGenuine: true,
			Reason:    "Lead passed all verification checks.",
			Details: map[string]any{
				"client_ip":       clientIP,
				"time_on_page":    timeOnPage,
				"ip_state":        res.Region,
				"submitted_state": sub.SubmittedState,
				"fraud_score":     res.FraudScore,
			},
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
