package discord

import (
	"strings"

	"onboarder/internal/domain"
)

const variationSelector = "\uFE0F"

var symbolEmoji = map[domain.Symbol]string{
	domain.SymbolFlagDE: "🇩🇪",
	domain.SymbolFlagUS: "🇺🇸",
	domain.SymbolYes:    "✅",
	domain.SymbolNo:     "❌",
	domain.SymbolOne:    "1️⃣",
	domain.SymbolTwo:    "2️⃣",
	domain.SymbolThree:  "3️⃣",
	domain.SymbolFour:   "4️⃣",
	domain.SymbolFive:   "5️⃣",
	domain.SymbolSix:    "6️⃣",
}

var emojiSymbol = func() map[string]domain.Symbol {
	m := make(map[string]domain.Symbol, len(symbolEmoji))
	for s, e := range symbolEmoji {
		m[normalizeEmoji(e)] = s
	}
	return m
}()

// clients differ in whether they send the variation selector
func normalizeEmoji(e string) string {
	return strings.ReplaceAll(e, variationSelector, "")
}

// Emoji returns the unicode emoji for s
func Emoji(s domain.Symbol) (string, bool) {
	e, ok := symbolEmoji[s]
	return e, ok
}

// SymbolOf maps a reaction emoji to its symbol, SymbolUnknown if it has none
func SymbolOf(emoji string) domain.Symbol {
	return emojiSymbol[normalizeEmoji(emoji)]
}
