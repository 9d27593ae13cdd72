// Package stations owns the radio station identity table and the name
// matching rules built on it.
//
// Key responsibilities:
//   - Decode the embedded TOML table of station folders, canonical names,
//     display names, and aliases, enforcing alias uniqueness at load.
//   - Normalize archive and folder names so spelling variants land on the
//     same alias.
//   - Resolve names to identities, surfacing ambiguous or unknown names as
//     Unmatched entries instead of guessing.
//
// Extend the table in stations.toml rather than adding matching special
// cases in code.
package stations
