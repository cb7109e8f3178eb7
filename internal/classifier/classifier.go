// Package classifier implements the bag-of-phrases sentiment heuristic and
// metal attribution used for every headline and post.
package classifier

import (
	"strings"

	"metals-pulse/internal/domain"
)

const termWeight = 10

// Result is the outcome of classifying one piece of text.
type Result struct {
	Score int
	Label domain.SentimentLabel
}

type Classifier struct {
	lexicon       Lexicon
	aliases       []MetalAlias
	genericTerms  []string
	genericMetals []domain.Metal
}

func New(lexicon Lexicon, aliases []MetalAlias) *Classifier {
	if len(aliases) == 0 {
		aliases = DefaultMetalAliases()
	}
	return &Classifier{
		lexicon:       lexicon.clone(),
		aliases:       append([]MetalAlias(nil), aliases...),
		genericTerms:  append([]string(nil), defaultGenericTerms...),
		genericMetals: append([]domain.Metal(nil), defaultGenericMetals...),
	}
}

func Default() *Classifier {
	return New(DefaultLexicon(), DefaultMetalAliases())
}

// Classify adds termWeight for every bullish phrase contained in text and
// subtracts it for every bearish one. Each lexicon entry counts at most once.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	score := termWeight * (countMatches(lower, c.lexicon.Bullish) - countMatches(lower, c.lexicon.Bearish))
	score = domain.ClampScore(score)
	return Result{Score: score, Label: domain.LabelForScore(score)}
}

// DetectMetals never returns an empty slice.
func (c *Classifier) DetectMetals(text string) []domain.Metal {
	lower := strings.ToLower(text)

	matched := make([]domain.Metal, 0, len(c.aliases))
	for _, entry := range c.aliases {
		for _, alias := range entry.Aliases {
			if strings.Contains(lower, alias) {
				matched = append(matched, entry.Metal)
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}

	if countMatches(lower, c.genericTerms) > 0 {
		return append([]domain.Metal(nil), c.genericMetals...)
	}
	return []domain.Metal{defaultMetal}
}

func countMatches(text string, tokens []string) int {
	count := 0
	for _, token := range tokens {
		if token != "" && strings.Contains(text, token) {
			count++
		}
	}
	return count
}
