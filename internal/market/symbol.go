// Package market implements symbol normalization and multi-source price
// resolution.
package market

import (
	"strings"
	"unicode"
)

// exchange prefixes stripped from user-entered tickers.
var strippedPrefixes = []string{"NSE:", "NSE/", "BSE:", "BSE/"}

// recognized exchange suffixes; a symbol already carrying one is never
// given a default suffix.
var recognizedSuffixes = []string{".NS", ".BO", ".BSE", ".OE", ".NC", ".MX", ".US"}

// removed separator and punctuation characters (L&T -> LT).
const removedChars = " -/\\&@#()[]'"

// NormalizeSymbol converts arbitrary user or agent ticker text to its
// canonical exchange-suffixed form. It is a total function: empty input
// comes back unchanged, and no input can make it fail.
//
//	NormalizeSymbol("L&T.NS")       -> "LT.NS"
//	NormalizeSymbol("nse:reliance") -> "RELIANCE.NS"
//	NormalizeSymbol("AAPL")         -> "AAPL"
func NormalizeSymbol(symbol string) string {
	if symbol == "" {
		return symbol
	}

	s := strings.TrimSpace(symbol)

	for _, prefix := range strippedPrefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
			break
		}
	}

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(removedChars, r) {
			return -1
		}
		return r
	}, s)

	// Uppercase ticker and suffix parts separately around the first dot,
	// preserving any further dots inside the suffix.
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = strings.ToUpper(s[:idx]) + "." + strings.ToUpper(s[idx+1:])
	} else {
		s = strings.ToUpper(s)
	}

	if !hasRecognizedSuffix(s) && looksLikeNSEName(s) {
		s += ".NS"
	}

	return s
}

func hasRecognizedSuffix(s string) bool {
	for _, suffix := range recognizedSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// looksLikeNSEName reports whether a plain name should default to the NSE
// suffix: at least one letter, no digits, and longer than the 1-4
// characters typical of US tickers. The length test runs against the full
// current string, dots included.
func looksLikeNSEName(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter && len(s) > 4
}
