package panel

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web/*
var content embed.FS

// Options configures the dashboard handler.
type Options struct {
	// Dir serves assets from disk instead of the embedded copy when it
	// names an existing directory.
	Dir string

	// APIBase is the REST prefix the dashboard calls. Defaults to "/api/v1".
	APIBase string

	// WSPath is the WebSocket endpoint for live updates. Defaults to "/ws".
	WSPath string
}

// Settings is served at /config.json so the page can locate the API.
type Settings struct {
	APIBase string `json:"api_base"`
	WSPath  string `json:"ws_path"`
}

// Handler returns an http.Handler that serves the load-control dashboard.
//
// Unknown paths without a file extension fall back to index.html. Missing
// assets (anything with an extension) return 404.
// Panics if the embedded web assets cannot be loaded.
func Handler(opts Options) http.Handler {
	var fileSystem http.FileSystem

	if opts.Dir != "" {
		if info, err := os.Stat(opts.Dir); err == nil && info.IsDir() {
			fileSystem = http.Dir(opts.Dir)
		}
	}
	if fileSystem == nil {
		webFS, err := fs.Sub(content, "web")
		if err != nil {
			panic(fmt.Sprintf("panel: failed to load embedded web assets: %v", err))
		}
		fileSystem = http.FS(webFS)
	}

	settings := Settings{APIBase: opts.APIBase, WSPath: opts.WSPath}
	if settings.APIBase == "" {
		settings.APIBase = "/api/v1"
	}
	if settings.WSPath == "" {
		settings.WSPath = "/ws"
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		panic(fmt.Sprintf("panel: failed to encode settings: %v", err))
	}

	fileServer := http.FileServer(fileSystem)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Assets are not content-hashed.
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		upath := path.Clean("/" + r.URL.Path)

		switch {
		case upath == "/":
			fileServer.ServeHTTP(w, r)
		case upath == "/config.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write(settingsJSON) //nolint:errcheck // Best-effort response write
		default:
			f, err := fileSystem.Open(upath[1:])
			if err == nil {
				f.Close()
				fileServer.ServeHTTP(w, r)
				return
			}
			if path.Ext(upath) != "" {
				http.NotFound(w, r)
				return
			}
			r.URL.Path = "/"
			fileServer.ServeHTTP(w, r)
		}
	})
}
