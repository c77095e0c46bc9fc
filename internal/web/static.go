// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

//go:embed static
var staticEmbeddedFS embed.FS

func staticEmbedded() http.FileSystem {
	sub, err := fs.Sub(staticEmbeddedFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// staticFS serves from the source tree when it is available, so the page can
// be edited without rebuilding.
func staticFS() http.FileSystem {
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return staticEmbedded()
	}

	dir := filepath.Join(filepath.Dir(file), "static")
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return staticEmbedded()
	}

	return http.Dir(dir)
}

// StaticHandler serves the dashboard page.
func StaticHandler() http.Handler {
	return http.FileServer(staticFS())
}
