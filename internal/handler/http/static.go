package http

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// ServeUI serves the landing page with the submission form
func (h *Handler) ServeUI(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.viewsDir, "index.html"))
}

// mountStaticFiles serves files under dir at /public/
func mountStaticFiles(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.Handle("/public/*", http.StripPrefix("/public/", fs))
}
