// Package static embeds the browser assets.
package static

import "embed"

//go:embed js css
var Files embed.FS
