package lead

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Submission is the inbound lead payload. ip_address is optional; when the
// form's edge proxy is trusted, the client IP comes from forwarded headers.
type Submission struct {
	IPAddress      string `json:"ip_address,omitempty"`
	SubmittedState string `json:"submitted_state"`
	TimeOnPage     *int   `json:"time_on_page"`
	UserAgent      string `json:"user_agent"`
}

// Validate checks required fields. submitted_state content is not checked
// here; an unrecognized state is a verdict, not a malformed request.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.SubmittedState) == "" {
		return fmt.Errorf("submitted_state is required")
	}
	if s.TimeOnPage == nil {
		return fmt.Errorf("time_on_page is required")
	}
	if *s.TimeOnPage < 0 {
		return fmt.Errorf("time_on_page must not be negative")
	}
	if strings.TrimSpace(s.UserAgent) == "" {
		return fmt.Errorf("user_agent is required")
	}
	if s.IPAddress != "" && net.ParseIP(s.IPAddress) == nil {
		return fmt.Errorf("ip_address is not a valid IP literal")
	}
	return nil
}

// ResolveClientIP picks the client IP for scoring. Precedence: the body's
// ip_address, then X-Forwarded-For / X-Real-IP when proxies are trusted,
// then the socket peer. Returns an error when nothing parses as an IP.
func ResolveClientIP(r *http.Request, s *Submission, trustProxy bool) (string, error) {
	if s != nil && s.IPAddress != "" {
		return s.IPAddress, nil
	}
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// First hop is the original client.
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); net.ParseIP(ip) != nil {
				return ip, nil
			}
		}
		if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
			if net.ParseIP(xrip) != nil {
				return xrip, nil
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) == nil {
		return "", fmt.Errorf("no resolvable client IP")
	}
	return host, nil
}
