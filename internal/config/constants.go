package config

import "time"

// Application constants - all hardcoded values for the PostPulse system
const (
	// Application Info
	AppName    = "PostPulse"
	AppVersion = "1.2.0"
	AppVendor  = "PostPulse"

	// Upload Constraints
	DefaultMaxUploadBytes = 25 << 20 // 25MB
	UploadFieldName       = "file"
	SessionIDHeader       = "X-Session-ID"

	// Workbook Layout
	WorkbookSheetName = "All posts"
	WorkbookHeaderRow = 2
	WorkbookExtXLSX   = ".xlsx"
	WorkbookExtXLS    = ".xls"

	// Session Store
	DefaultSessionTTL    = 2 * time.Hour
	DefaultSessionLimit  = 64
	DefaultSweepInterval = time.Minute

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"
	DefaultUploadsDir = "data/uploads"
	DefaultExportsDir = "data/exports"

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	// Export Settings
	ExportFilenamePrefix = "linkedin_analytics"
	ExportTimeLayout     = "20060102_150405"

	// API Endpoints (internal)
	APIBasePath       = "/api"
	AnalyticsEndpoint = "/api/analytics"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"

	// WebSocket Endpoints
	WebSocketEndpoint = "/ws"
)

// Feature Flags - compile-time configuration
const (
	FeatureWebSocketEnabled    = true
	FeatureMetricsEnabled      = true
	FeatureHealthCheckEnabled  = true
	FeatureRateLimitingEnabled = true

	// Development Features
	FeatureDebugLoggingEnabled = false
	FeatureMockDataEnabled     = false
)

// GetFeatureFlag returns the value of a feature flag
func GetFeatureFlag(flag string) bool {
	switch flag {
	case "websocket":
		return FeatureWebSocketEnabled
	case "metrics":
		return FeatureMetricsEnabled
	case "health_check":
		return FeatureHealthCheckEnabled
	case "rate_limiting":
		return FeatureRateLimitingEnabled
	case "debug_logging":
		return FeatureDebugLoggingEnabled
	case "mock_data":
		return FeatureMockDataEnabled
	default:
		return false
	}
}
