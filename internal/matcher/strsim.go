package matcher

import (
	"math"
	"strings"
	"unicode"

	"github.com/desertthunder/seedmix/internal/normalize"
)

// longStringTokens is the token count from which edit distance outweighs Jaro-Winkler.
const longStringTokens = 10

type compositeWeights struct {
	levenshtein, jaroWinkler, jaccard, phonetic float64
}

var (
	shortWeights = compositeWeights{levenshtein: 0.3, jaroWinkler: 0.4, jaccard: 0.2, phonetic: 0.1}
	longWeights  = compositeWeights{levenshtein: 0.4, jaroWinkler: 0.3, jaccard: 0.2, phonetic: 0.1}
)

// Levenshtein returns the edit distance between a and b in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity is 1 minus the edit distance over the longer length.
func LevenshteinSimilarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	return 1 - float64(Levenshtein(a, b))/float64(max(la, lb))
}

// JaroWinkler returns the Jaro-Winkler similarity with the standard 0.1 prefix scale over up to 4 runes.
func JaroWinkler(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	window := max(max(len(ra), len(rb))/2-1, 0)
	matchedA := make([]bool, len(ra))
	matchedB := make([]bool, len(rb))

	matches := 0
	for i := range ra {
		lo, hi := max(0, i-window), min(len(rb), i+window+1)
		for j := lo; j < hi; j++ {
			if matchedB[j] || ra[i] != rb[j] {
				continue
			}
			matchedA[i], matchedB[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range ra {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len(ra)) + m/float64(len(rb)) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < min(4, len(ra), len(rb)) && ra[i] == rb[i]; i++ {
		prefix++
	}
	return jaro + float64(prefix)*0.1*(1-jaro)
}

// TokenJaccard is the Jaccard index of the two token sets after dropping stopwords.
func TokenJaccard(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	return float64(inter) / float64(len(ta)+len(tb)-inter)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		if !normalize.IsStopword(t) {
			set[t] = true
		}
	}
	return set
}

var soundexCodes = map[rune]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// Soundex returns the four character American Soundex code of the letters in s, or "" when s has none.
func Soundex(s string) string {
	var letters []rune
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	code := []byte{byte(unicode.ToUpper(letters[0]))}
	last := soundexCodes[letters[0]]
	for _, r := range letters[1:] {
		c, ok := soundexCodes[r]
		switch {
		case !ok && r != 'h' && r != 'w':
			last = 0 // vowels separate repeated codes
		case ok && c != last:
			code = append(code, c)
			last = c
		}
		if len(code) == 4 {
			break
		}
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

// PhoneticMatch is 1 when both strings share a Soundex code and 0 otherwise.
func PhoneticMatch(a, b string) float64 {
	sa, sb := Soundex(a), Soundex(b)
	if sa == sb && (sa != "" || a == b) {
		return 1
	}
	return 0
}

// Composite blends edit distance, Jaro-Winkler, token overlap and phonetic equality into one score in [0,1].
//
// Strings under ten tokens weight Jaro-Winkler highest. With phonetic disabled the other weights are
// rescaled to sum to one.
func Composite(a, b string, phonetic bool) float64 {
	if a == b {
		return 1
	}

	w := shortWeights
	if max(len(strings.Fields(a)), len(strings.Fields(b))) >= longStringTokens {
		w = longWeights
	}

	score := w.levenshtein*LevenshteinSimilarity(a, b) +
		w.jaroWinkler*JaroWinkler(a, b) +
		w.jaccard*TokenJaccard(a, b)
	total := w.levenshtein + w.jaroWinkler + w.jaccard

	if phonetic {
		score += w.phonetic * PhoneticMatch(a, b)
		total += w.phonetic
	}
	return math.Min(1, math.Max(0, score/total))
}
