package stations

import "strings"

// Normalize folds an archive or folder name into the form used for alias
// lookups: trimmed, lowercased, a trailing .rpf extension dropped, and every
// non-alphanumeric rune removed. RADIO_01_CLASS_ROCK, radio01_classrock, and
// RADIO_01_CLASS_ROCK.rpf all normalize to the same string.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ".rpf")
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// rootOf strips the generic radio prefix and all digit runs from a normalized
// name, leaving the fragment that distinguishes one station from another.
// radio05talk01 becomes talk, which deliberately collides with the root of
// radio11talk02 so partial names surface as ambiguous instead of guessed.
func rootOf(normalized string) string {
	trimmed := strings.TrimPrefix(normalized, "radio")
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
