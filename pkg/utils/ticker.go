package utils

import (
	"strings"
)

// Common company-name aliases for US tickers.
var tickerAliases = map[string]string{
	"APPLE":           "AAPL",
	"MICROSOFT":       "MSFT",
	"GOOGLE":          "GOOGL",
	"ALPHABET":        "GOOGL",
	"AMAZON":          "AMZN",
	"TESLA":           "TSLA",
	"NVIDIA":          "NVDA",
	"FACEBOOK":        "META",
	"META PLATFORMS":  "META",
	"JPMORGAN":        "JPM",
	"JP MORGAN":       "JPM",
	"JOHNSON":         "JNJ",
	"J&J":             "JNJ",
	"VISA":            "V",
	"MASTERCARD":      "MA",
	"NETFLIX":         "NFLX",
	"INTEL":           "INTC",
	"WALMART":         "WMT",
	"BRK.B":           "BRK-B",
	"BERKSHIRE":       "BRK-B",
}

// symbolToSector maps the dashboard's well-known symbols to a sector.
var symbolToSector = map[string]string{
	"AAPL":  "Technology",
	"MSFT":  "Technology",
	"GOOGL": "Technology",
	"META":  "Technology",
	"AMZN":  "Consumer",
	"NVDA":  "Semiconductors",
	"AMD":   "Semiconductors",
	"INTC":  "Semiconductors",
	"TSM":   "Semiconductors",
	"AVGO":  "Semiconductors",
	"TSLA":  "Automotive",
	"F":     "Automotive",
	"GM":    "Automotive",
	"NIO":   "Automotive",
	"RIVN":  "Automotive",
	"JPM":   "Finance",
	"BAC":   "Finance",
	"WFC":   "Finance",
	"GS":    "Finance",
	"MS":    "Finance",
	"V":     "Finance",
	"MA":    "Finance",
	"AXP":   "Finance",
	"JNJ":   "Healthcare",
	"PFE":   "Healthcare",
	"ABBV":  "Healthcare",
	"MRK":   "Healthcare",
	"UNH":   "Healthcare",
}

// OtherSector is the sector reported for symbols missing from the table.
const OtherSector = "Other"

// NormalizeTicker normalizes user input to a canonical ticker.
// It handles aliases, uppercasing, whitespace and a leading "$".
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// SectorOf returns the sector for a symbol, or OtherSector.
func SectorOf(symbol string) string {
	if s, ok := symbolToSector[NormalizeTicker(symbol)]; ok {
		return s
	}
	return OtherSector
}
