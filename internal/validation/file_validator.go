package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator checks workbook inputs and artifact directories before the
// analyze pipeline touches them, so path problems surface as one clear error
// instead of a mid-run failure.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateWorkbookFile checks that path names a readable .xlsx or .xls file.
// Office lock files (the ~$ prefix a running Excel leaves behind) are
// rejected because they are never complete workbooks.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("workbook does not exist",
			slog.String("file", path))
		return fmt.Errorf("workbook %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("failed to stat workbook",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("workbook path is a directory",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a workbook", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xls" {
		v.logger.Error("unsupported workbook extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("workbook %s has unsupported extension %q (want .xlsx or .xls)", path, ext)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("skipping Office lock file",
			slog.String("file", path))
		return fmt.Errorf("workbook %s is an Office lock file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("workbook is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("workbook %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("workbook validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the artifact directory exists and is
// writable, probing with a throwaway file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	v.logger.Debug("output directory validated",
		slog.String("directory", dir))
	return nil
}
