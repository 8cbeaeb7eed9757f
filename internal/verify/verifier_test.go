package verify

import (
	"context"
	"net/http"
	"testing"

	"github.com/wilsharo/lead-filter-api/internal/ipqs"
	"github.com/wilsharo/lead-filter-api/internal/lead"
)

type fakeIPQS struct {
	result *ipqs.Result
	err    error
}

func (f *fakeIPQS) Lookup(ctx context.Context, ip, userAgent string) (*ipqs.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func intPtr(n int) *int { return &n }

func submission(state string, timeOnPage int) *lead.Submission {
	return &lead.Submission{
		SubmittedState: state,
		TimeOnPage:     intPtr(timeOnPage),
		UserAgent:      "Mozilla/5.0",
	}
}

func usResult(region string) *ipqs.Result {
	return &ipqs.Result{
		Success:     true,
		CountryCode: "US",
		Region:      region,
		FraudScore:  10,
	}
}

func TestVerifyLowTimeOnPage(t *testing.T) {
	v := NewVerifier(&fakeIPQS{result: usResult("New York")})

	for _, top := range []int{0, 1, 2} {
		out := v.Verify(context.Background(), submission("NY", top), "173.56.213.26")
		if out.Verdict.IsGenuine {
			t.Errorf("time_on_page=%d should not be genuine", top)
		}
		if out.Verdict.Reason != "Low time on page." {
			t.Errorf("reason = %q", out.Verdict.Reason)
		}
		if out.Status != http.StatusOK {
			t.Errorf("status = %d, want 200", out.Status)
		}
		if out.Result != nil {
			t.Error("no upstream lookup should happen for low time on page")
		}
	}
}

func TestVerifyFailsClosedWithoutClient(t *testing.T) {
	v := NewVerifier(nil)

	out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")
	if out.Verdict.IsGenuine {
		t.Error("should fail closed without a configured client")
	}
	if out.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", out.Status)
	}
}

func TestVerifyUpstreamFailure(t *testing.T) {
	v := NewVerifier(&fakeIPQS{err: ipqs.ErrUpstream})

	out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")
	if out.Verdict.IsGenuine {
		t.Error("upstream failure must not pass the lead")
	}
	if out.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", out.Status)
	}
	if out.Verdict.Reason != "IP validation service request exception." {
		t.Errorf("reason = %q", out.Verdict.Reason)
	}
}

func TestVerifyProviderReportedFailure(t *testing.T) {
	v := NewVerifier(&fakeIPQS{result: &ipqs.Result{Success: false, Message: "Invalid key."}})

	out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")
	if out.Verdict.IsGenuine {
		t.Error("provider failure must not pass the lead")
	}
	if out.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", out.Status)
	}
	if out.Verdict.Reason != "IP validation failed: Invalid key." {
		t.Errorf("reason = %q", out.Verdict.Reason)
	}
}

func TestVerifyAnonymityDetection(t *testing.T) {
	tests := []struct {
		name       string
		result     *ipqs.Result
		wantReason string
	}{
		{
			name:       "proxy only",
			result:     &ipqs.Result{Success: true, CountryCode: "US", Region: "New York", Proxy: true},
			wantReason: "Proxy detected.",
		},
		{
			name:       "vpn only",
			result:     &ipqs.Result{Success: true, CountryCode: "US", Region: "New York", VPN: true},
			wantReason: "Vpn detected.",
		},
		{
			name:       "tor only",
			result:     &ipqs.Result{Success: true, CountryCode: "US", Region: "New York", Tor: true},
			wantReason: "Tor detected.",
		},
		{
			name:       "proxy and vpn",
			result:     &ipqs.Result{Success: true, CountryCode: "US", Region: "New York", Proxy: true, VPN: true},
			wantReason: "Proxy, vpn detected.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(&fakeIPQS{result: tt.result})
			out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")

			if out.Verdict.IsGenuine {
				t.Error("anonymized IP must not pass")
			}
			if out.Verdict.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", out.Verdict.Reason, tt.wantReason)
			}
		})
	}
}

func TestVerifyNonUSIP(t *testing.T) {
	v := NewVerifier(&fakeIPQS{result: &ipqs.Result{Success: true, CountryCode: "CA", Region: "Ontario"}})

	out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")
	if out.Verdict.IsGenuine {
		t.Error("non-US IP must not pass")
	}
	if out.Verdict.Reason != "IP address is not from the U.S." {
		t.Errorf("reason = %q", out.Verdict.Reason)
	}
}

func TestVerifyStateRules(t *testing.T) {
	t.Run("invalid submitted state", func(t *testing.T) {
		v := NewVerifier(&fakeIPQS{result: usResult("New York")})
		out := v.Verify(context.Background(), submission("Narnia", 10), "173.56.213.26")

		if out.Verdict.IsGenuine {
			t.Error("invalid state must not pass")
		}
		if out.Verdict.Reason != "Submitted state is not a valid U.S. state name or abbreviation." {
			t.Errorf("reason = %q", out.Verdict.Reason)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		v := NewVerifier(&fakeIPQS{result: usResult("California")})
		out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")

		if out.Verdict.IsGenuine {
			t.Error("mismatched state must not pass")
		}
		if out.Verdict.Reason != "IP address geolocation (state) does not match submitted U.S. state." {
			t.Errorf("reason = %q", out.Verdict.Reason)
		}
	})

	t.Run("unnormalizable region", func(t *testing.T) {
		v := NewVerifier(&fakeIPQS{result: usResult("Nowhere")})
		out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")

		if out.Verdict.IsGenuine {
			t.Error("unknown region must not pass")
		}
	})

	t.Run("abbreviation matches full region name", func(t *testing.T) {
		v := NewVerifier(&fakeIPQS{result: usResult("New York")})
		out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")

		if !out.Verdict.IsGenuine {
			t.Errorf("genuine lead rejected: %q", out.Verdict.Reason)
		}
		if out.Verdict.Reason != "Lead passed all verification checks." {
			t.Errorf("reason = %q", out.Verdict.Reason)
		}
	})

	t.Run("full name matches full region name", func(t *testing.T) {
		v := NewVerifier(&fakeIPQS{result: usResult("New York")})
		out := v.Verify(context.Background(), submission("New York", 15), "173.56.213.26")

		if !out.Verdict.IsGenuine {
			t.Errorf("genuine lead rejected: %q", out.Verdict.Reason)
		}
	})
}

func TestVerifyGenuineDetails(t *testing.T) {
	v := NewVerifier(&fakeIPQS{result: usResult("New York")})
	out := v.Verify(context.Background(), submission("NY", 10), "173.56.213.26")

	d := out.Verdict.Details
	if d["client_ip"] != "173.56.213.26" {
		t.Errorf("details client_ip = %v", d["client_ip"])
	}
	if d["time_on_page"] != 10 {
		t.Errorf("details time_on_page = %v", d["time_on_page"])
	}
	if d["fraud_score"] != 10.0 {
		t.Errorf("details fraud_score = %v", d["fraud_score"])
	}
}
