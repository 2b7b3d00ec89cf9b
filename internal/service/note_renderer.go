package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	noteMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	noteSanitizer = bluemonday.UGCPolicy()
)

// RenderNote 将备注按 Markdown 渲染为 HTML 并做 XSS 清洗，空备注返回空串
func RenderNote(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := noteMarkdown.Convert([]byte(note), &buf); err != nil {
		return noteSanitizer.Sanitize(note)
	}
	return strings.TrimSpace(noteSanitizer.Sanitize(buf.String()))
}
