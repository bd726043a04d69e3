package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	tatweel     = 'ـ' // ـ kashida, purely typographic
	alefWasla   = 'ٱ' // ٱ
	alef        = 'ا' // ا
	alefMaqsura = 'ى' // ى
	ya          = 'ي' // ي
	taaMarbuta  = 'ة' // ة
	ha          = 'ه' // ه
)

// NormalizeArabic canonicalizes Arabic text for matching:
//   - trims surrounding whitespace
//   - strips diacritical marks (tashkeel and combining hamza), which also
//     folds hamza-carrying letter variants (أ إ آ ؤ ئ) to their bare carrier
//     via NFD decomposition
//   - folds alef wasla to plain alef, alef maqsura to ya, taa marbuta to ha
//   - removes tatweel
//
// Pure function of its input; used for all Arabic-side identity and matching
// (headwords, concept terms, roots).
func NormalizeArabic(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// Chained transformers carry internal buffers, so the chain is built per
	// call rather than shared.
	chain := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
		runes.Map(foldArabicRune),
		norm.NFC,
	)

	out, _, err := transform.String(chain, text)
	if err != nil {
		return text
	}
	return out
}

func foldArabicRune(r rune) rune {
	switch r {
	case alefWasla:
		return alef
	case alefMaqsura:
		return ya
	case taaMarbuta:
		return ha
	}
	return r
}

// TokenizeGloss canonicalizes an English gloss into a token sequence:
// lowercase, every non-alphanumeric scalar replaced by a space, split on
// whitespace. Used to build and query the gloss inverted index.
func TokenizeGloss(gloss string) []string {
	lowered := strings.ToLower(gloss)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Fields(cleaned)
}
