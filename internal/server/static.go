package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MountImages serves the files of a local image store under the path of its
// public base URL, so the refs it hands out resolve against this server.
func MountImages(r chi.Router, baseURL, dir string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse image base url: %w", err)
	}
	prefix := strings.TrimRight(u.Path, "/")
	if prefix == "" {
		return fmt.Errorf("image base url %q has no path to serve from", baseURL)
	}

	files := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		// no directory listings
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
	return nil
}
