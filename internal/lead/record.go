package lead

import (
	"time"

	"github.com/google/uuid"
)

// Record is the audit trail entry emitted to sinks for every completed
// verification, whatever the outcome.
type Record struct {
	RecordID string `json:"record_id"`
	TS       string `json:"ts"` // RFC3339Nano, UTC

	ClientIP       string `json:"client_ip"`
	SubmittedState string `json:"submitted_state"`
	TimeOnPage     int    `json:"time_on_page"`
	UserAgent      string `json:"user_agent"`

	IsGenuine bool   `json:"is_genuine"`
	Reason    string `json:"reason,omitempty"`

	FraudScore  float64 `json:"fraud_score,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Region      string  `json:"region,omitempty"`
	Proxy       bool    `json:"proxy,omitempty"`
	VPN         bool    `json:"vpn,omitempty"`
	Tor         bool    `json:"tor,omitempty"`
	CacheHit    bool    `json:"cache_hit,omitempty"`

	UASummary    UASummary `json:"ua_summary,omitempty"`
	RepeatWithin float64   `json:"repeat_within_ms,omitempty"` // ms since previous submission from the same IP
}

// NewRecord stamps identity and time; callers fill in the rest.
func NewRecord(clientIP string, s *Submission) Record {
	rec := Record{
		RecordID: uuid.New().String(),
		TS:       time.Now().UTC().Format(time.RFC3339Nano),
		ClientIP: clientIP,
	}
	if s != nil {
		rec.SubmittedState = s.SubmittedState
		rec.UserAgent = s.UserAgent
		if s.TimeOnPage != nil {
			rec.TimeOnPage = *s.TimeOnPage
		}
		rec.UASummary = SummarizeUA(s.UserAgent)
	}
	return rec
}
