package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	UploadsDir    string
	ExportsDir    string
	CacheDir      string
	LogsDir       string

	// Well-known artifact files written by the offline analyzer
	PostsCSV    string
	SummaryJSON string
	TrendCSV    string
	TopCSV      string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exe)

	// All paths are relative to the executable directory so the
	// application behaves the same whether run from dev/ or dist/.
	// Directory structure:
	// dist/
	//   ├── data/
	//   │   ├── uploads/   (workbooks saved for reprocessing)
	//   │   ├── exports/   (generated CSV artifacts)
	//   │   └── cache/     (temporary files)
	//   ├── logs/          (application logs)
	//   └── web/           (dashboard assets)

	dataDir := filepath.Join(exeDir, "data")
	exportsDir := filepath.Join(dataDir, "exports")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		WebDir:        filepath.Join(exeDir, "web"),
		StaticDir:     filepath.Join(exeDir, "web", "static"),
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		ExportsDir:    exportsDir,
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		PostsCSV:    filepath.Join(exportsDir, "posts.csv"),
		SummaryJSON: filepath.Join(exportsDir, "summary.json"),
		TrendCSV:    filepath.Join(exportsDir, "trend.csv"),
		TopCSV:      filepath.Join(exportsDir, "top_posts.csv"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.ExportsDir,
		p.CacheDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetWebFilePath returns the path to a web file
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// GetUploadPath returns the path for a saved workbook upload
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetExportPath returns the path for an export artifact
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetExportPathForTime returns a timestamped CSV export path,
// e.g. linkedin_analytics_20240115_093000.csv
func (p *Paths) GetExportPathForTime(t time.Time) string {
	filename := fmt.Sprintf("linkedin_analytics_%s.csv", t.Format("20060102_150405"))
	return filepath.Join(p.ExportsDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("uploads", p.UploadsDir),
			slog.String("exports", p.ExportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("artifact_files",
			slog.String("posts_csv", p.PostsCSV),
			slog.String("summary_json", p.SummaryJSON),
			slog.String("trend_csv", p.TrendCSV),
			slog.String("top_csv", p.TopCSV),
		))
}
