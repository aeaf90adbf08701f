package edit

import (
	"article-admin/internal/article"

	"github.com/microcosm-cc/bluemonday"
)

func SetContent(v article.Version, html string) article.Version {
	out := v.Clone()
	out.Content = html
	return out
}

// Sanitizer strips scripts, event handlers and other unsafe markup from
// HTML pasted or imported into an article body.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
