// Package web holds the server-rendered page templates.
package web

import "embed"

//go:embed templates/*.tmpl
var Templates embed.FS
