// Package normalize implements the pure text transforms used to compare track and artist names:
// case folding, diacritic stripping, annotation removal and search variation generation.
//
// Every function in this package is total and safe for concurrent use.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxPasses = 8

var (
	featuring  = regexp.MustCompile(`(?i)\b(?:feat\.?|ft\.?|featuring)\s.*$`)
	qualifier  = regexp.MustCompile(`(?i)\s[-–—]\s.*\b(?:remix|mix|remaster|remastered|version|edit|live|mono|stereo|demo|instrumental)\b.*$`)
	annotation = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]|\{[^{}]*\}`)
	apostrophe = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")
	articles   = []string{"the ", "a ", "an "}
)

// Normalize folds text into its comparison form.
//
// The transform decomposes and strips diacritics, drops "feat." clauses, dash-separated
// remix/version/remaster qualifiers and bracketed annotations, replaces punctuation with
// spaces, lowercases and collapses whitespace. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	s := text
	for range maxPasses {
		next := pass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// NormalizeArtist is [Normalize] followed by removal of leading articles, keeping at least one token.
func NormalizeArtist(text string) string {
	return StripArticle(Normalize(text))
}

// StripArticle removes leading "the", "a" and "an" tokens from normalized text while something remains.
func StripArticle(s string) string {
	for {
		stripped := false
		for _, a := range articles {
			if rest, ok := strings.CutPrefix(s, a); ok && rest != "" {
				s, stripped = rest, true
			}
		}
		if !stripped {
			return s
		}
	}
}

// Fold lowercases text and strips diacritics without removing any annotations.
func Fold(text string) string {
	return collapse(foldMarks(cases.Lower(language.Und).String(foldMarks(canonicalSpaces(text)))))
}

// Tokens splits normalized text into its words.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

func pass(text string) string {
	s := foldMarks(canonicalSpaces(text))
	s = featuring.ReplaceAllString(s, "")
	s = qualifier.ReplaceAllString(s, "")
	for {
		next := annotation.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}
	s = strings.ReplaceAll(s, "&", " and ")
	s = apostrophe.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
	s = cases.Lower(language.Und).String(s)
	return collapse(foldMarks(s))
}

// foldMarks decomposes s and removes nonspacing marks.
func foldMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func canonicalSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u200b' {
			return ' '
		}
		return r
	}, s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
