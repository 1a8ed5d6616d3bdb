package collector

import (
	"strings"
	"unicode"
)

// aliases translates common shorthands into canonical symbols.
var aliases = map[string]string{
	"BTC":      "BTC/USD",
	"BITCOIN":  "BTC/USD",
	"ETH":      "ETH/USD",
	"ETHEREUM": "ETH/USD",
	"SOL":      "SOL/USD",
	"SOLANA":   "SOL/USD",
	"BNB":      "BNB/USD",
	"XRP":      "XRP/USD",
	"CARDANO":  "ADA/USD",
	"DOGE":     "DOGE/USD",
	"DOGECOIN": "DOGE/USD",

	"EURUSD": "EUR/USD",
	"GBPUSD": "GBP/USD",
	"USDJPY": "USD/JPY",
	"AUDUSD": "AUD/USD",
	"USDIDR": "USD/IDR",
	"GOLD":   "XAU/USD",
	"XAUUSD": "XAU/USD",

	"BBCA": "BBCA.JK",
	"BBRI": "BBRI.JK",
	"BMRI": "BMRI.JK",
	"TLKM": "TLKM.JK",
	"ASII": "ASII.JK",
	"IHSG": "^JKSE",
}

// stockTickers are bare tickers recognized in free text.
var stockTickers = map[string]bool{
	"AAPL": true, "MSFT": true, "TSLA": true, "NVDA": true,
	"GOOGL": true, "AMZN": true, "META": true,
}

// coinIDs maps crypto base assets to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
}

// pairAssets are the currency and metal codes accepted on either side of a
// slash pair found in free text. Crypto bases come from coinIDs.
var pairAssets = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "AUD": true, "NZD": true,
	"CAD": true, "CHF": true, "CNY": true, "HKD": true, "SGD": true, "IDR": true,
	"INR": true, "KRW": true, "MYR": true, "THB": true, "PHP": true, "MXN": true,
	"BRL": true, "ZAR": true, "TRY": true, "SEK": true, "NOK": true, "DKK": true,
	"PLN": true,
	"XAU": true, "XAG": true, "XPT": true, "XPD": true,
}

func isPairAsset(code string) bool {
	if pairAssets[code] {
		return true
	}
	_, ok := coinIDs[code]
	return ok
}

// NormalizeSymbol upper-cases s and resolves known aliases.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if mapped, ok := aliases[s]; ok {
		return mapped
	}
	return s
}

// SplitPair splits "BASE/QUOTE" into its parts.
func SplitPair(symbol string) (base, quote string, ok bool) {
	base, quote, ok = strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" {
		return "", "", false
	}
	return base, quote, true
}

// IsCrypto reports whether symbol resolves to a crypto asset.
func IsCrypto(symbol string) bool {
	s := NormalizeSymbol(symbol)
	base := s
	if b, _, ok := SplitPair(s); ok {
		base = b
	}
	_, ok := coinIDs[base]
	return ok
}

// DetectSymbol finds the first tradable symbol mentioned in free text.
func DetectSymbol(text string) (string, bool) {
	tokens := strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '.' || r == '^')
	})
	for _, tok := range tokens {
		tok = strings.Trim(tok, "./")
		if tok == "" {
			continue
		}
		if base, quote, ok := SplitPair(tok); ok && isPairAsset(base) && isPairAsset(quote) {
			return tok, true
		}
		if strings.HasSuffix(tok, ".JK") && len(tok) > 3 {
			return tok, true
		}
		if mapped, ok := aliases[tok]; ok {
			return mapped, true
		}
		if stockTickers[tok] {
			return tok, true
		}
	}
	return "", false
}
