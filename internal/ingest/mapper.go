package ingest

import (
	"html"
	"strings"

	"article-admin/internal/article"
)

// ToFields seeds a draft from a page: both versions start from the same text
// and are rewritten by hand afterwards.
func ToFields(p Page) article.Fields {
	f := article.Empty()
	f.Title = strings.TrimSpace(p.Title)
	f.SourceURL = p.URL

	content := Paragraphs(p.Text)
	f.EasyVersion.Content = content
	f.MediumVersion.Content = content
	if p.SiteName != "" {
		f.Labels = []string{strings.TrimSpace(p.SiteName)}
	}
	return article.Normalize(f)
}

// Paragraphs renders plain text as escaped <p> elements, one per non-blank line.
func Paragraphs(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>\n")
	}
	return b.String()
}
