package sentiment

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/jonreiter/govader"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/types"
)

const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2

	// marketWeight is the share of the market lexicon in a blended score.
	marketWeight = 0.7
)

var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Lexical labels text by its polarity score. It never calls out and
// never fails; the body stands in as the summary.
type Lexical struct{}

var _ interfaces.Strategy = Lexical{}

func NewLexical() Lexical { return Lexical{} }

func (Lexical) Name() string { return "lexical" }

func (Lexical) Classify(ctx context.Context, title, body string) (types.Sentiment, string, error) {
	return Label(Polarity(body)), body, nil
}

// Label maps a polarity score onto a sentiment.
func Label(polarity float64) types.Sentiment {
	switch {
	case polarity > positiveThreshold:
		return types.SentimentPositive
	case polarity < negativeThreshold:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

// Polarity scores text in [-1, 1]. The VADER compound score covers general
// language; when the text also carries market vocabulary the market lexicon
// score is blended in with marketWeight. Empty text is 0.
func Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	general := vader().PolarityScores(text).Compound
	if math.IsNaN(general) {
		general = 0
	}

	market, n := marketPolarity(text)
	if n == 0 {
		return clamp(general)
	}
	return clamp(marketWeight*market + (1-marketWeight)*general)
}

// marketPolarity is the mean of the market-scored words after intensifiers
// and negation, along with how many words were scored.
func marketPolarity(text string) (float64, int) {
	words := tokenize(strings.ToLower(text))

	sum, n := 0.0, 0
	intensity := 1.0
	negatedFor := 0
	for _, w := range words {
		if negators[w] || strings.HasSuffix(w, "n't") {
			negatedFor = negationWindow
			continue
		}
		if f, ok := intensifiers[w]; ok {
			intensity *= f
			continue
		}

		if p, ok := lookup(w); ok {
			p *= intensity
			if negatedFor > 0 {
				p *= negationScale
				negatedFor = 0
			}
			sum += clamp(p)
			n++
		} else if negatedFor > 0 {
			negatedFor--
		}
		intensity = 1.0
	}

	if n == 0 {
		return 0, 0
	}
	return clamp(sum / float64(n)), n
}

// lookup finds a word's polarity, falling back to its base form for
// irregular and regular inflections ("plunged", "topping", "rose").
func lookup(w string) (float64, bool) {
	if p, ok := lexicon[w]; ok {
		return p, true
	}
	if base, ok := irregular[w]; ok {
		p, ok := lexicon[base]
		return p, ok
	}
	for _, suffix := range inflections {
		if !strings.HasSuffix(w, suffix) || len(w)-len(suffix) < 3 {
			continue
		}
		base := w[:len(w)-len(suffix)]
		if p, ok := lexicon[base]; ok {
			return p, true
		}
		if p, ok := lexicon[base+"e"]; ok {
			return p, true
		}
		// topped -> top
		if l := len(base); base[l-1] == base[l-2] {
			if p, ok := lexicon[base[:l-1]]; ok {
				return p, true
			}
		}
	}
	return 0, false
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// tokenize splits on anything that is not a letter, digit or apostrophe.
func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '’' {
			if r == '’' {
				r = '\''
			}
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, strings.Trim(current.String(), "'"))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, strings.Trim(current.String(), "'"))
	}
	return words
}
