// Package web holds the status page served next to the API.
package web

import (
	"embed"
	"io/fs"

	"github.com/ItsNotGoodName/x-tabstack/internal/core"
)

//go:embed dist
var dist embed.FS

func FS() fs.FS {
	return core.Must2(fs.Sub(dist, "dist"))
}
