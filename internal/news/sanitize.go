package news

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vibe-stock-dashboard/internal/types"
)

// NewsAPI truncates content with a trailing "[+1234 chars]".
var truncationMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// SanitizeText strips markup and collapses whitespace in provider text.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	s = truncationMarker.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// normalize drops articles without a title or link and cleans the text of
// the rest, keeping at most limit.
func normalize(articles []types.RawArticle, limit int) []types.RawArticle {
	out := make([]types.RawArticle, 0, len(articles))
	seen := map[string]bool{}
	for _, a := range articles {
		a.Title = SanitizeText(a.Title)
		a.Description = SanitizeText(a.Description)
		if a.Title == "" || a.URL == "" || a.Title == "[Removed]" || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
