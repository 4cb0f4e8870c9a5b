// Package services implements the business logic layer of PostPulse.
// It provides a clean separation between HTTP handlers and the dataset
// pipeline, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- Orchestrating parse, filter, and aggregation steps
//	- Session-scoped dataset lifetime
//	- Cross-cutting concerns (logging, metrics)
//	- Error handling and transformation
//	- Broadcasting dataset lifecycle events
//
// # Available Services
//
// The package provides these core services:
//
//	- AnalyticsService: upload, query, and export of post datasets
//	- HealthService: system health and readiness checks
//
// # Error Handling
//
// Services return domain-specific errors that handlers can transform:
//
//	- apierrors.ErrSessionNotFound when no dataset is loaded
//	- *dataprocessing.SheetNotFoundError and friends from parsing
//	- Wrapped internal errors for unexpected failures
//
// # Testing
//
// Services are tested against a real in-memory session store and mocked
// event broadcasters:
//
//	events := new(MockDatasetEvents)
//	svc := NewAnalyticsService(store, parser, summarizer, exp, events, nil, logger)
//
//	events.On("BroadcastDatasetLoaded", mock.Anything).Return()
//	result, err := svc.LoadWorkbook(ctx, "", file, "export.xlsx")
package services
