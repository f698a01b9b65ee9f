package chiext

import (
	"io/fs"
	"net/http"
	"strings"
)

// StaticFS serves the top level entries of fsys and answers "/" with
// index.html. Other requests fall through to next.
func StaticFS(fsys fs.FS) (func(next http.Handler) http.Handler, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	routes := make([]string, 0, len(entries))
	for _, e := range entries {
		routes = append(routes, "/"+e.Name())
	}

	files := http.FileServer(http.FS(fsys))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if r.URL.Path == "/" {
				http.ServeFileFS(w, r, fsys, "index.html")
				return
			}
			for _, route := range routes {
				if strings.HasPrefix(r.URL.Path, route) {
					files.ServeHTTP(w, r)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
