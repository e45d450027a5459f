// Package web holds the admin page and its script, embedded into the binary.
package web

import "embed"

//go:embed admin.html static
var Assets embed.FS
