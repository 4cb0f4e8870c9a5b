package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "postpulse/internal/errors"
)

// maxClientLogBytes bounds the request body; dashboard log entries are small
// and anything larger is likely misuse.
const maxClientLogBytes = 16 << 10

// ClientLogHandler receives log entries from the dashboard frontend so script
// errors end up in the server log next to the requests that triggered them.
type ClientLogHandler struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		logger:       logger.With(slog.String("component", "client_log")),
		errorHandler: errorHandler,
	}
}

// ClientLogEntry is one frontend log record
type ClientLogEntry struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Page    string                 `json:"page,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Handle processes POST /api/client-logs
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxClientLogBytes)

	var entry ClientLogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	if entry.Message == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("message", "Log message is required"))
		return
	}

	attrs := []slog.Attr{slog.String("origin", "dashboard")}
	if entry.Page != "" {
		attrs = append(attrs, slog.String("page", entry.Page))
	}
	if len(entry.Data) > 0 {
		attrs = append(attrs, slog.Any("data", entry.Data))
	}

	h.logger.LogAttrs(r.Context(), clientLogLevel(entry.Level), entry.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
	})
}

// clientLogLevel maps a frontend level name to a slog level, defaulting to
// info for anything unrecognized rather than rejecting the entry.
func clientLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
