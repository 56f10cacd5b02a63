package http

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const devServerHint = "React build not found. Run 'npm run dev' in the frontend and open http://localhost:5173, " +
	"or build with 'npm run build' into the static directory and refresh this page."

// spaHandler serves files from the built SPA and falls back to index.html so
// client-side routes survive a reload.
type spaHandler struct {
	dir    string
	logger *slog.Logger
}

func newSPAHandler(dir string, logger *slog.Logger) *spaHandler {
	return &spaHandler{dir: dir, logger: logger}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed("GET, HEAD")(w, r)
		return
	}

	if h.dir != "" {
		// Cleaning a rooted path strips any "..", keeping lookups inside dir.
		rel := path.Clean("/" + r.URL.Path)
		if rel != "/" {
			if file := filepath.Join(h.dir, filepath.FromSlash(rel)); isFile(file) {
				http.ServeFile(w, r, file)
				return
			}
		}

		if index := filepath.Join(h.dir, "index.html"); isFile(index) {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, r, index)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(devServerHint))
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
