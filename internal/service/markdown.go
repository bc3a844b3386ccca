package service

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	rendererhtml "github.com/yuin/goldmark/renderer/html"
)

// journalRenderer turns journal markdown into HTML for the share page. Raw
// HTML in the source is dropped.
type journalRenderer struct {
	md goldmark.Markdown
}

func newJournalRenderer() *journalRenderer {
	return &journalRenderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(rendererhtml.WithHardWraps()),
	)}
}

func (r *journalRenderer) Render(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}
	var out bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
