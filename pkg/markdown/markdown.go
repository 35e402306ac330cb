// Package markdown renders notification body markdown into HTML fragments
// for the outbound email payload. Rendering of the final email template is
// owned by the downstream templating service; this package only converts the
// per-notification markdown contents.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown text to an HTML fragment.
type Renderer interface {
	Render(src string) (string, error)
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// New creates a markdown renderer with GitHub-flavored extensions and
// hard-wrapped line breaks, matching how notification bodies are authored.
func New() Renderer {
	return &goldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (r *goldmarkRenderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
