package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ServeDashboard hands dashboard routes to the single page app, which does
// its own routing below the entry point.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(h.config.Server.FrontendDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		h.errorResponse(w, r, http.StatusNotFound, "not_found", "frontend is not built")
		return
	}
	http.ServeFile(w, r, index)
}

// ServeStatic serves built frontend assets and answers JSON 404 for anything
// else.
func (h *Handler) ServeStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		root := h.config.Server.FrontendDir
		name := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if strings.HasPrefix(name, filepath.Clean(root)) {
			if info, err := os.Stat(name); err == nil && !info.IsDir() {
				http.ServeFile(w, r, name)
				return
			}
		}
	}

	h.errorResponse(w, r, http.StatusNotFound, "not_found", "route not found")
}
