package main

import (
	"embed"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"postpulse/internal/app"
)

// Embedded dashboard files
//go:embed all:web
var webFiles embed.FS

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (overrides the default search)")
	port := flag.Int("port", 0, "override the configured HTTP port")
	logLevel := flag.String("log-level", "", "override the configured log level (debug, info, warn, error)")
	flag.Parse()

	// Flags are translated to environment variables so config.Load stays
	// the single configuration entry point. Environment beats file there,
	// which gives flags the final word.
	if *configPath != "" {
		os.Setenv("POSTPULSE_CONFIG", *configPath)
	}
	if *port > 0 {
		os.Setenv("POSTPULSE_SERVER_PORT", strconv.Itoa(*port))
	}
	if *logLevel != "" {
		os.Setenv("POSTPULSE_LOGGING_LEVEL", *logLevel)
	}

	var frontendFS fs.FS
	if webSubFS, err := fs.Sub(webFiles, "web"); err == nil {
		frontendFS = webSubFS
	} else {
		slog.Warn("Dashboard embedding failed, serving API only",
			slog.String("error", err.Error()))
		frontendFS = nil
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
