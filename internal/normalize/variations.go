package normalize

import (
	"slices"
	"strings"
)

// Normalizer generates search variations using an injected alias table.
type Normalizer struct {
	aliases *AliasTable
}

// New returns a Normalizer backed by aliases. A nil table disables alias substitution.
func New(aliases *AliasTable) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Aliases returns the table the Normalizer was built with.
func (n *Normalizer) Aliases() *AliasTable {
	return n.aliases
}

// Variations returns alternative spellings of text for partial matching.
//
// The normalized form always comes first, followed by article variants, alias substitutions,
// reversed token order (2 to 4 tokens), drop-one-token subsets and shorter prefixes.
// The result is deduplicated and stable for identical input.
func (n *Normalizer) Variations(text string) []string {
	base := Normalize(text)
	if base == "" {
		return nil
	}

	var out variationSet
	n.names(&out, base)

	tokens := strings.Fields(StripArticle(base))
	if len(tokens) >= 2 && len(tokens) <= 4 {
		reversed := slices.Clone(tokens)
		slices.Reverse(reversed)
		out.add(strings.Join(reversed, " "))
	}
	if len(tokens) >= 3 {
		for i := range tokens {
			out.add(strings.Join(slices.Delete(slices.Clone(tokens), i, i+1), " "))
		}
	}
	for k := len(tokens) - 1; k >= 1; k-- {
		prefix := tokens[:k]
		if k == 1 && stopwords[prefix[0]] {
			continue
		}
		out.add(strings.Join(prefix, " "))
	}
	return out.items
}

// QueryVariations combines title and artist variations into search queries.
//
// The first entry is the normalized "title artist" query. Article and alias substitutions of
// the artist come next, then title variations paired with the normalized artist, then each
// side on its own.
func (n *Normalizer) QueryVariations(title, artist string) []string {
	nt, na := Normalize(title), NormalizeArtist(artist)

	var out variationSet
	out.add(join(nt, na))

	var artists variationSet
	n.names(&artists, Normalize(artist))
	for _, av := range artists.items {
		out.add(join(nt, av))
	}
	if tvs := n.Variations(title); len(tvs) > 1 {
		for _, tv := range tvs[1:] {
			out.add(join(tv, na))
		}
	}
	out.add(nt)
	out.add(na)
	return out.items
}

// names adds base, its article variants and its aliases.
func (n *Normalizer) names(out *variationSet, base string) {
	if base == "" {
		return
	}
	out.add(base)
	stripped := StripArticle(base)
	out.add(stripped)
	if stripped == base {
		out.add("the " + base)
	}
	for _, alias := range n.aliases.Names(base) {
		out.add(alias)
	}
}

// IsStopword reports whether token is ignored by token-set comparisons.
func IsStopword(token string) bool {
	return stopwords[token]
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
}

type variationSet struct {
	items []string
	seen  map[string]bool
}

func (v *variationSet) add(s string) {
	s = collapse(s)
	if s == "" {
		return
	}
	if v.seen == nil {
		v.seen = make(map[string]bool)
	}
	if v.seen[s] {
		return
	}
	v.seen[s] = true
	v.items = append(v.items, s)
}

func join(parts ...string) string {
	return collapse(strings.Join(parts, " "))
}
