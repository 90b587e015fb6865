// Package web embeds the dashboard that the monitor serves.
package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevModeEnv names the environment variable that makes the monitor serve the
// dashboard from the source tree, so that page edits show without a rebuild.
const DevModeEnv = "EPICELL_MONITOR_DEV"

//go:embed dist
var dist embed.FS

// GetAssets returns the files of the dashboard.
func GetAssets() http.FileSystem {
	if dir, ok := sourceDir(); ok && devMode() {
		log.Printf("serving the dashboard from %s", dir)
		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		log.Panic(err)
	}

	return http.FS(sub)
}

func devMode() bool {
	on, err := strconv.ParseBool(os.Getenv(DevModeEnv))
	return err == nil && on
}

// sourceDir locates the dist directory next to this file. It is only found
// when the binary runs on the machine that built it.
func sourceDir() (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}

	dir := filepath.Join(filepath.Dir(file), "dist")
	if _, err := os.Stat(dir); err != nil {
		return "", false
	}

	return dir, true
}
