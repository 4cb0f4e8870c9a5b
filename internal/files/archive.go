package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"postpulse/internal/config"
)

// DefaultKeep is the number of archived workbooks retained per instance.
const DefaultKeep = 20

// Entry describes one archived workbook.
type Entry struct {
	Name    string
	Size    int64
	SavedAt time.Time
}

// Archive stores uploaded workbooks under the uploads directory so a dataset
// can be rebuilt after its session expires. Retention is count-capped, not
// time-based: Prune keeps the newest entries and removes the rest.
type Archive struct {
	dir    string
	keep   int
	logger *slog.Logger
}

// NewArchive creates an archive rooted at the paths registry's uploads
// directory. keep <= 0 falls back to DefaultKeep.
func NewArchive(paths *config.Paths, keep int, logger *slog.Logger) *Archive {
	if keep <= 0 {
		keep = DefaultKeep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{
		dir:    paths.UploadsDir,
		keep:   keep,
		logger: logger.With(slog.String("component", "upload_archive")),
	}
}

// Save writes workbook bytes under a timestamped name derived from the
// session and source file, then prunes entries beyond the retention limit.
// The write goes through a temp file and rename so a concurrent List never
// observes a partial workbook. A repeat upload of the same source in the
// same second overwrites the earlier copy.
func (a *Archive) Save(sessionID, sourceName string, data []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	name := archiveName(sessionID, sourceName, time.Now().UTC())
	tmp, err := os.CreateTemp(a.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp upload: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(a.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}

	if removed, err := a.Prune(); err != nil {
		a.logger.Warn("upload prune failed", slog.String("error", err.Error()))
	} else if removed > 0 {
		a.logger.Debug("old uploads pruned", slog.Int("removed", removed))
	}

	a.logger.Info("workbook archived",
		slog.String("name", name),
		slog.String("session_id", sessionID),
		slog.Int("size_bytes", len(data)))
	return name, nil
}

// List returns archived workbooks, newest first. A missing uploads directory
// reads as an empty archive.
func (a *Archive) List() ([]Entry, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		// Dot entries are in-flight temp files.
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: e.Name(), Size: info.Size(), SavedAt: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].Name > out[j].Name
		}
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

// Open opens an archived workbook for re-parsing. The name must come from
// List; names carrying path elements are rejected.
func (a *Archive) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid archive name %q", name)
	}
	return os.Open(filepath.Join(a.dir, name))
}

// Prune removes the oldest entries beyond the retention limit and reports
// how many were deleted.
func (a *Archive) Prune() (int, error) {
	list, err := a.List()
	if err != nil {
		return 0, err
	}
	if len(list) <= a.keep {
		return 0, nil
	}

	removed := 0
	for _, e := range list[a.keep:] {
		if err := os.Remove(filepath.Join(a.dir, e.Name)); err != nil {
			return removed, fmt.Errorf("remove archived upload %s: %w", e.Name, err)
		}
		removed++
	}
	return removed, nil
}

// archiveName builds a sortable file name: 20060102T150405Z_<sess8>_<source>.
func archiveName(sessionID, sourceName string, now time.Time) string {
	sess := sessionID
	if len(sess) > 8 {
		sess = sess[:8]
	}
	if sess == "" {
		sess = "nosession"
	}
	return fmt.Sprintf("%s_%s_%s", now.Format("20060102T150405Z"), sess, sanitizeSource(sourceName))
}

// sanitizeSource strips path elements and characters that do not travel well
// in file names. An empty result falls back to workbook.xlsx.
func sanitizeSource(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_' || r == ' ':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	if out == "" {
		return "workbook.xlsx"
	}
	return out
}
