package http

import (
	"io/fs"
	"net/http"
)

// ServeDashboard returns the handler for the single-page dashboard. The page
// is served with no-store so a rebuilt binary always ships the current
// frontend; the CDN-loaded chart libraries carry their own caching.
func ServeDashboard(webFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := fs.ReadFile(webFS, "index.html")
		if err != nil {
			http.Error(w, "Dashboard page not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(page)
	}
}

// StaticAssets serves the dashboard's static files from the embedded
// filesystem. Mounted under /static/.
func StaticAssets(webFS fs.FS) http.Handler {
	return http.FileServer(http.FS(webFS))
}
