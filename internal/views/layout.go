// Package views renders the storefront and operator HTML.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"winsbygroup.com/prodreg/internal/middleware"
)

// html collects markup; every dynamic value goes through esc or attrURL.
type html struct {
	strings.Builder
}

func (h *html) raw(s string) {
	h.WriteString(s)
}

func (h *html) printf(format string, args ...any) {
	fmt.Fprintf(&h.Builder, format, args...)
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func attrURL(s string) string {
	return templ.EscapeString(string(templ.URL(s)))
}

// component wraps a markup builder as a templ component.
func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		fn(ctx, &h)
		_, err := io.WriteString(w, h.String())
		return err
	})
}

// page wraps body in the shared document shell.
func page(title string, body func(ctx context.Context, h *html)) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if token := middleware.GetCSRF(ctx); token != "" {
			h.printf(`<meta name="csrf-token" content="%s">`, esc(token))
		}
		h.printf(`<title>%s</title>`, esc(title))
		h.raw(`<link rel="stylesheet" href="/static/css/app.css"></head><body>`)
		body(ctx, h)
		info := middleware.GetPage(ctx)
		if info.Operator {
			h.printf(`<footer class="footer">Prodreg v%s | <a href="/web/">Registrations</a></footer>`, esc(info.Version))
		} else {
			h.printf(`<footer class="footer">Prodreg v%s</footer>`, esc(info.Version))
		}
		h.raw(`</body></html>`)
	})
}

// csrfField renders the hidden form field echo's CSRF middleware reads.
func csrfField(ctx context.Context, h *html) {
	if token := middleware.GetCSRF(ctx); token != "" {
		h.printf(`<input type="hidden" name="_csrf" value="%s">`, esc(token))
	}
}
