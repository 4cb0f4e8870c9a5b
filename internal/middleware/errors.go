package middleware

import (
	"encoding/json"
	"net/http"

	"postpulse/internal/infrastructure"
)

// Problem is an RFC 7807 problem details body. Failures inside handlers go
// through the apierrors package; Problem covers failures raised by the
// middleware chain itself, where no API error exists yet.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// ProblemFromStatus builds a Problem for the statuses the middleware chain
// emits directly.
func ProblemFromStatus(status int, detail, traceID string) Problem {
	var title, problemType string

	switch status {
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = "/errors/rate-limit-exceeded"
	case http.StatusGatewayTimeout:
		title = "Request Timeout"
		problemType = "/errors/request-timeout"
	case http.StatusInternalServerError:
		title = "Internal Server Error"
		problemType = "/errors/internal-server-error"
	default:
		title = http.StatusText(status)
		problemType = "/errors/unknown"
	}

	return Problem{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}

// WriteProblem renders p as application/problem+json. When p carries no
// trace ID, the one on the request context is used.
func WriteProblem(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Trace == "" {
		p.Trace = infrastructure.GetTraceID(r.Context())
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}
