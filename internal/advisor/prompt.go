package advisor

import (
	"fmt"
	"strings"
	"time"

	"metals-pulse/internal/domain"
	"metals-pulse/internal/sentiment"
)

const maxContextHeadlines = 5

const analystBrief = `You are a precious metals market analyst writing a short daily brief.

Rules:
- Use only the sentiment index, headlines and quotes below. Never fabricate data.
- Lead with the overall sentiment level and score, then the main driver.
- Mention each metal in focus with its price and 24h change when available.
- If sources disagree (news vs social vs momentum), say so.
- Keep it under 120 words, plain text, no headings. This is informational, not advice.`

func BuildSystemPrompt(marketContext string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(analystBrief)
	sb.WriteString("\n\n--- LIVE MARKET DATA (as of ")
	sb.WriteString(now.UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

func BuildUserPrompt(metals []domain.Metal) string {
	if len(metals) == 0 {
		return "Write today's brief covering gold, silver, copper and platinum."
	}
	return "Write today's brief focused on " + strings.Join(domain.MetalNames(metals), ", ") + "."
}

func FormatMarketContext(res sentiment.Result, prices []*domain.PriceSnapshot) string {
	var sb strings.Builder

	if res.Index.Level != "" {
		src := res.Index.Sources
		sb.WriteString(fmt.Sprintf("\nSentiment: %s (%d) news=%d social=%d momentum=%d\n",
			res.Index.Label, res.Index.Score, src.News, src.Social, src.Momentum))
	}

	if len(res.Items) > 0 {
		sb.WriteString("\nHeadlines:\n")
		for i, item := range res.Items {
			if i == maxContextHeadlines {
				break
			}
			sb.WriteString(fmt.Sprintf("  [%s %+d] %s (%s)\n",
				item.Sentiment, item.Score, item.Title, item.SourceName))
		}
	}

	if len(prices) > 0 {
		sb.WriteString("\nQuotes (USD):\n")
		for _, p := range prices {
			unit := domain.Metals[p.Metal].Unit
			sb.WriteString(fmt.Sprintf("  %s: $%.2f/%s (24h: %+.2f%%)\n",
				p.Metal, p.Price, unit, p.ChangePercent24h))
		}
	}

	if sb.Len() == 0 {
		return "No market data currently available."
	}
	return sb.String()
}
