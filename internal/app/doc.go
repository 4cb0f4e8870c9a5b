// Package app provides application initialization and lifecycle management
// for the PostPulse analytics server. It wires configuration, logging,
// observability, the WebSocket hub, the session store and the analytics
// pipeline into a single container with graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Create the WebSocket hub and session store
//	4. Initialize the analytics and health services
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts down within the
// configured timeout: active requests complete, WebSocket clients are
// closed cleanly and the session janitor stops.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit() directly, leaving exit control to the main function.
package app
