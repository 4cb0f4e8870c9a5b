// Package shared provides common utilities and test helpers used across the
// PostPulse codebase. It serves as a central location for functionality that
// doesn't belong to any specific domain or architectural layer.
//
// # Structure
//
// The package is organized into the following components:
//
// - testutil: Testing utilities including the slog recorder and assertions
//
// # Usage Guidelines
//
// This package should only contain:
//
// 1. Test utilities used by multiple packages
// 2. Generic helper functions with no domain-specific logic
//
// It should NOT contain:
//
// 1. Business logic or domain-specific code
// 2. Circular dependencies with other internal packages
//
// # Test Utilities
//
// The testutil subpackage provides a thread-safe slog recorder so tests can
// assert on structured log output:
//
//	func TestSomething(t *testing.T) {
//	    logger, rec := testutil.NewTestLogger(t)
//
//	    svc := NewService(logger)
//	    svc.Do(context.Background())
//
//	    testutil.AssertLogged(t, rec, slog.LevelInfo, "dataset loaded")
//	}
package shared
