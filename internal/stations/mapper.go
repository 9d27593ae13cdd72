package stations

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Match pairs a resolved station identity with how it was found. Exact means
// the normalized name hit an alias directly; otherwise the match came from
// root comparison.
type Match struct {
	Identity Identity
	Exact    bool
}

// UnmatchedKind distinguishes names with no plausible station from names that
// fit more than one.
type UnmatchedKind string

const (
	UnmatchedNoMatch   UnmatchedKind = "no-match"
	UnmatchedAmbiguous UnmatchedKind = "ambiguous"
)

// Unmatched describes a name the mapper refused to assign. Ambiguous names
// carry the sorted folder names of every candidate station so an operator can
// resolve them by hand; the mapper never picks one itself.
type Unmatched struct {
	Name       string
	Kind       UnmatchedKind
	Candidates []string
}

// Mapper resolves archive and folder names to station identities.
type Mapper struct {
	table *table
}

// NewMapper returns a mapper backed by the embedded station table.
func NewMapper() *Mapper {
	return &Mapper{table: defaultTable}
}

func newMapperWithTable(t *table) *Mapper {
	return &Mapper{table: t}
}

// Map resolves one name. Resolution order: exact normalized-alias lookup,
// then root comparison. A root comparison that fits two or more stations is
// reported as ambiguous rather than decided.
func (m *Mapper) Map(name string) (Match, *Unmatched) {
	normalized := Normalize(name)
	if normalized == "" {
		return Match{}, &Unmatched{Name: name, Kind: UnmatchedNoMatch}
	}

	if idx, ok := m.table.byAlias[normalized]; ok {
		return Match{Identity: m.table.identities[idx], Exact: true}, nil
	}

	inputRoot := rootOf(normalized)
	if inputRoot == "" {
		return Match{}, &Unmatched{Name: name, Kind: UnmatchedNoMatch}
	}

	seen := make(map[int]struct{})
	for root, idxs := range m.table.rootIndex {
		if !strings.Contains(root, inputRoot) && !strings.Contains(inputRoot, root) {
			continue
		}
		for _, idx := range idxs {
			seen[idx] = struct{}{}
		}
	}

	switch len(seen) {
	case 0:
		return Match{}, &Unmatched{Name: name, Kind: UnmatchedNoMatch}
	case 1:
		for idx := range seen {
			return Match{Identity: m.table.identities[idx]}, nil
		}
	}

	candidates := make([]string, 0, len(seen))
	for idx := range seen {
		candidates = append(candidates, m.table.identities[idx].Folder)
	}
	sort.Strings(candidates)
	return Match{}, &Unmatched{Name: name, Kind: UnmatchedAmbiguous, Candidates: candidates}
}

// DisplayTitle renders an arbitrary archive name the way station display
// names read, for report and log output covering unrecognized entries.
func DisplayTitle(name string) string {
	base := strings.TrimSpace(name)
	if lower := strings.ToLower(base); strings.HasSuffix(lower, ".rpf") || strings.HasSuffix(lower, ".awc") {
		base = base[:len(base)-4]
	}
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown Station"
	}
	return cases.Title(language.Und).String(strings.ToLower(title))
}
