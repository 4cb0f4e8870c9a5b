// Package config provides centralized configuration management for PostPulse.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern POSTPULSE_* for namespacing:
//
//	POSTPULSE_SERVER_PORT=8080
//	POSTPULSE_LOGGING_LEVEL=info
//	POSTPULSE_UPLOAD_MAX_SIZE_BYTES=26214400
//	POSTPULSE_SESSION_TTL=2h
//	POSTPULSE_SECURITY_ALLOWED_ORIGINS=http://localhost:8080
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	uploadPath := paths.GetUploadPath("posts.xlsx")
//	exportPath := paths.GetExportPath("posts.csv")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- File paths are accessible
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
