// Package panel serves the browser dashboard for load control.
//
// The dashboard is a small static page (HTML, one script, one stylesheet)
// embedded with go:embed. It lists the site's loads, toggles them through
// the REST API and follows changes over the WebSocket. A directory on disk
// can be served instead while editing the page.
package panel
