package sentiment

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"vibe-stock-dashboard/internal/types"
)

const (
	summaryMarker   = "SUMMARY:"
	sentimentMarker = "SENTIMENT:"

	// markdown emphasis models wrap around markers and values
	decoration = "*_#"
)

// decoratedMarker matches "**SUMMARY:**", "## Sentiment:", "__Summary__:" and
// the plain forms.
var decoratedMarker = regexp.MustCompile(`(?i)[*_#]*[ \t]*(summary|sentiment)[*_]*[ \t]*:[*_]*`)

// ParseReply extracts (sentiment, summary) from a model reply. A JSON object
// with both fields is preferred; otherwise the SUMMARY: and SENTIMENT:
// markers must both appear, in that order. Anything else, including an
// unknown label, is types.ErrClassificationUnparseable.
func ParseReply(reply string) (types.Sentiment, string, error) {
	if s, summary, ok := parseJSONReply(reply); ok {
		return s, summary, nil
	}
	return parseMarkedReply(reply)
}

func parseJSONReply(reply string) (types.Sentiment, string, bool) {
	content := cleanJSONResponse(reply)
	if !strings.HasPrefix(content, "{") {
		return "", "", false
	}

	var parsed struct {
		Summary   string `json:"summary"`
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", "", false
	}
	summary := strings.TrimSpace(parsed.Summary)
	s, ok := types.ParseSentiment(parsed.Sentiment)
	if !ok || summary == "" {
		return "", "", false
	}
	return s, summary, true
}

func parseMarkedReply(reply string) (types.Sentiment, string, error) {
	reply = decoratedMarker.ReplaceAllStringFunc(reply, func(m string) string {
		if indexFold(m, "summary") >= 0 {
			return summaryMarker + " "
		}
		return sentimentMarker + " "
	})

	si := indexFold(reply, summaryMarker)
	if si < 0 {
		return types.SentimentNeutral, "", fmt.Errorf("%w: missing %s", types.ErrClassificationUnparseable, summaryMarker)
	}
	ti := indexFold(reply[si:], sentimentMarker)
	if ti < 0 {
		return types.SentimentNeutral, "", fmt.Errorf("%w: missing %s after %s", types.ErrClassificationUnparseable, sentimentMarker, summaryMarker)
	}
	ti += si

	summary := trimDecoration(reply[si+len(summaryMarker) : ti])
	if summary == "" {
		return types.SentimentNeutral, "", fmt.Errorf("%w: empty summary", types.ErrClassificationUnparseable)
	}

	label := reply[ti+len(sentimentMarker):]
	if nl := strings.IndexAny(label, "\r\n"); nl >= 0 {
		label = label[:nl]
	}
	s, ok := types.ParseSentiment(label)
	if !ok {
		return types.SentimentNeutral, "", fmt.Errorf("%w: unknown sentiment %q", types.ErrClassificationUnparseable, trimDecoration(label))
	}
	return s, summary, nil
}

func trimDecoration(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), decoration))
}

// indexFold is a case-insensitive strings.Index for ASCII needles.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// cleanJSONResponse strips code fences and any prose around a JSON object.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
