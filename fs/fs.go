// Package appfs embeds the files the binaries ship with.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
