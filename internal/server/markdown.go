package server

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// RenderMarkdown converts the operator's markdown notice to HTML for
// clients that render it directly.
func RenderMarkdown(md string) string {
	var buf bytes.Buffer
	_ = goldmark.Convert([]byte(md), &buf)
	return buf.String()
}
