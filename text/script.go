package text

import (
	"github.com/go-text/typesetting/language"
)

// HasVerticalGlyphs returns true if [s] contains characters of scripts
// which are set upright in vertical writing modes, requiring an
// ideographic baseline.
func HasVerticalGlyphs(s string) bool {
	for _, r := range s {
		switch language.LookupScript(r) {
		case language.Han, language.Hiragana, language.Katakana, language.Hangul, language.Bopomofo, language.Yi:
			return true
		}
	}
	return false
}
