package normalize

import (
	"maps"
	"slices"
)

// defaultAliases maps a canonical artist name to the names it is also known by.
var defaultAliases = map[string][]string{
	"eminem":            {"slim shady", "marshall mathers", "b-rabbit"},
	"jay-z":             {"jay z", "shawn carter", "hov"},
	"the beatles":       {"beatles", "fab four"},
	"beyonce":           {"beyoncé", "queen bey"},
	"justin timberlake": {"jt"},
	"lady gaga":         {"stefani germanotta"},
	"kanye west":        {"ye", "yeezy"},
	"taylor swift":      {"t swift"},
	"bruno mars":        {"peter hernandez"},
	"the weeknd":        {"weeknd", "abel tesfaye"},
	"prince":            {"the artist formerly known as prince", "tafkap"},
	"snoop dogg":        {"snoop doggy dogg", "snoop lion"},
	"p!nk":              {"pink"},
	"mf doom":           {"doom", "metal face", "daniel dumile"},
}

// DefaultAliases returns a copy of the built-in artist alias groups.
func DefaultAliases() map[string][]string {
	out := make(map[string][]string, len(defaultAliases))
	for k, v := range defaultAliases {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// AliasTable is an immutable lookup of artist names that refer to the same act.
//
// All names are stored in [NormalizeArtist] form.
type AliasTable struct {
	groups [][]string
	index  map[string][]int
}

// NewAliasTable builds a table from canonical names to their aliases.
func NewAliasTable(groups map[string][]string) *AliasTable {
	t := &AliasTable{index: make(map[string][]int)}
	for _, canonical := range sortedKeys(groups) {
		t.add(canonical, groups[canonical])
	}
	return t
}

// DefaultAliasTable builds a table from [DefaultAliases].
func DefaultAliasTable() *AliasTable {
	return NewAliasTable(defaultAliases)
}

// With returns a new table holding the groups of t plus extra.
func (t *AliasTable) With(extra map[string][]string) *AliasTable {
	out := &AliasTable{index: make(map[string][]int, len(t.index))}
	for _, g := range t.groups {
		out.add(g[0], g[1:])
	}
	for _, canonical := range sortedKeys(extra) {
		out.add(canonical, extra[canonical])
	}
	return out
}

func (t *AliasTable) add(canonical string, aliases []string) {
	var group []string
	seen := make(map[string]bool)
	for _, name := range append([]string{canonical}, aliases...) {
		n := NormalizeArtist(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		group = append(group, n)
	}
	if len(group) == 0 {
		return
	}
	id := len(t.groups)
	t.groups = append(t.groups, group)
	for _, n := range group {
		t.index[n] = append(t.index[n], id)
	}
}

// Names returns every other name that shares a group with artist, in table order.
func (t *AliasTable) Names(artist string) []string {
	if t == nil {
		return nil
	}
	key := NormalizeArtist(artist)
	var out []string
	seen := map[string]bool{key: true}
	for _, id := range t.index[key] {
		for _, n := range t.groups[id] {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Related reports whether a and b are distinct names listed in the same group.
func (t *AliasTable) Related(a, b string) bool {
	if t == nil {
		return false
	}
	ka, kb := NormalizeArtist(a), NormalizeArtist(b)
	if ka == kb {
		return false
	}
	for _, ia := range t.index[ka] {
		for _, ib := range t.index[kb] {
			if ia == ib {
				return true
			}
		}
	}
	return false
}

// Len is the number of alias groups.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.groups)
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
