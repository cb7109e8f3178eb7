package domain

import "strings"

// Metal identifies one of the tracked precious or industrial metals.
type Metal string

const (
	MetalGold     Metal = "gold"
	MetalSilver   Metal = "silver"
	MetalCopper   Metal = "copper"
	MetalPlatinum Metal = "platinum"
)

// MetalInfo carries display metadata for a metal.
type MetalInfo struct {
	ID     Metal  `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Unit   string `json:"unit"`
}

// SupportedMetals lists all tracked metals in canonical order.
var SupportedMetals = []Metal{MetalGold, MetalSilver, MetalCopper, MetalPlatinum}

// Metals maps each metal to its market ticker and quoting unit.
var Metals = map[Metal]MetalInfo{
	MetalGold:     {ID: MetalGold, Name: "Gold", Symbol: "XAU", Unit: "oz"},
	MetalSilver:   {ID: MetalSilver, Name: "Silver", Symbol: "XAG", Unit: "oz"},
	MetalCopper:   {ID: MetalCopper, Name: "Copper", Symbol: "XCU", Unit: "lb"},
	MetalPlatinum: {ID: MetalPlatinum, Name: "Platinum", Symbol: "XPT", Unit: "oz"},
}

// ParseMetal accepts a metal id ("gold") or ticker ("XAU") in any case.
func ParseMetal(v string) (Metal, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range SupportedMetals {
		if v == string(m) || v == strings.ToLower(Metals[m].Symbol) {
			return m, true
		}
	}
	return "", false
}

func MetalNames(metals []Metal) []string {
	out := make([]string, 0, len(metals))
	for _, m := range metals {
		out = append(out, string(m))
	}
	return out
}
