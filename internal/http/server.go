package httpx

import "net/http"

func NewMux(e Env) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", e.Healthz)
	mux.HandleFunc("/readyz", e.Readyz)

	// Registered with and without the trailing slash; lead-filter.js posts
	// to the slashed form.
	mux.HandleFunc("/isGenuineLead", e.VerifyLead)
	mux.HandleFunc("/isGenuineLead/", e.VerifyLead)

	return RequestLogger(MetricsMiddleware(e.Metrics)(cors(mux)))
}
