// Package web embeds the page templates, the service worker script and static assets.
package web

import "embed"

//go:embed templates/*.html templates/*.js static/*
var FS embed.FS
