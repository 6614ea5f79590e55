package handlers

import (
	"net/http"
	"strings"
)

// Public serves generated images from the store. A re-run of the same prompt
// overwrites its files in place, so clients must revalidate against
// Last-Modified before reusing a cached copy. Directory listings are not served.
func (a *App) Public(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(a.Store.BasePath())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			a.error(w, http.StatusNotFound, "not_found", "not found")
			return
		}
		if strings.HasSuffix(r.URL.Path, ".png") {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}
