package classifier

import "metals-pulse/internal/domain"

// Lexicon is a pair of lowercase phrase lists, one per direction.
type Lexicon struct {
	Bullish []string
	Bearish []string
}

// MetalAlias lists the substrings that attribute text to a metal.
type MetalAlias struct {
	Metal   domain.Metal
	Aliases []string
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Bullish: []string{
			"rally", "surge", "soar", "climb", "gain", "rise", "bullish", "demand",
			"record", "high", "buy", "investment", "safe haven", "inflation hedge",
			"outperform", "breakout", "momentum", "upside", "growth", "positive",
		},
		Bearish: []string{
			"drop", "fall", "decline", "plunge", "crash", "bearish", "sell",
			"weak", "low", "slump", "pullback", "correction", "downside", "risk",
			"negative", "concern", "fear", "uncertainty", "pressure", "retreat",
		},
	}
}

// DefaultMetalAliases is ordered; detection preserves this order.
func DefaultMetalAliases() []MetalAlias {
	return []MetalAlias{
		{Metal: domain.MetalGold, Aliases: []string{"gold", "xau"}},
		{Metal: domain.MetalSilver, Aliases: []string{"silver", "xag"}},
		{Metal: domain.MetalCopper, Aliases: []string{"copper", "xcu"}},
		{Metal: domain.MetalPlatinum, Aliases: []string{"platinum", "xpt"}},
	}
}

var (
	defaultGenericTerms  = []string{"metal", "commodity"}
	defaultGenericMetals = []domain.Metal{domain.MetalGold, domain.MetalSilver, domain.MetalPlatinum}
	defaultMetal         = domain.MetalGold
)

func (l Lexicon) clone() Lexicon {
	return Lexicon{
		Bullish: append([]string(nil), l.Bullish...),
		Bearish: append([]string(nil), l.Bearish...),
	}
}
