// Package http implements HTTP request handlers for the PostPulse server.
// It provides a thin layer between HTTP transport and business logic,
// keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Session Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate request
//	    criteria, ok := h.criteria(w, r)
//	    if !ok {
//	        return
//	    }
//
//	    // 2. Call service layer
//	    result, err := h.service.DoSomething(r.Context(), criteria)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 3. Format and send response
//	    render.JSON(w, r, map[string]interface{}{"status": "success", "data": result})
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/session/not-found",
//	    "title": "Session Not Found",
//	    "status": 404,
//	    "detail": "No dataset is loaded for this session",
//	    "instance": "/api/analytics/summary"
//	}
//
// # Sessions
//
// Dataset queries are scoped by the X-Session-ID header, minted at upload.
// Plain links (the CSV download anchor) may carry it as the session_id query
// parameter instead, since anchors cannot set headers.
//
// # WebSocket Support
//
// The /ws endpoint upgrades with Gorilla WebSocket and registers clients
// with the hub, which pushes dataset lifecycle events.
//
// # Middleware Integration
//
// Handlers work with these middleware:
//
//	- RequestID: Adds unique request ID for tracing
//	- Logger: Structured logging with slog
//	- Recovery: Handles panics gracefully
//	- CORS: Configures cross-origin requests
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Mock service dependencies
//	- Test various HTTP scenarios
//	- Verify error responses
//	- Check middleware integration
package http
