package stations

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed stations.toml
var stationsTOML []byte

// Identity describes one radio station: the archive stem that doubles as the
// output folder name, the short canonical name, the in-game display name,
// and any extra alias spellings from the table.
type Identity struct {
	Canonical string
	Folder    string
	Display   string
	Aliases   []string
}

type identityRecord struct {
	Canonical string   `toml:"canonical"`
	Folder    string   `toml:"folder"`
	Display   string   `toml:"display"`
	Aliases   []string `toml:"aliases"`
}

type tableFile struct {
	Stations []identityRecord `toml:"stations"`
}

type table struct {
	identities []Identity
	byAlias    map[string]int
	byFolder   map[string]int
	rootIndex  map[string][]int
}

func loadTable(data []byte) (*table, error) {
	var file tableFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode station table: %w", err)
	}
	if len(file.Stations) == 0 {
		return nil, fmt.Errorf("station table is empty")
	}

	t := &table{
		byAlias:   make(map[string]int),
		byFolder:  make(map[string]int),
		rootIndex: make(map[string][]int),
	}
	for _, record := range file.Stations {
		canonical := strings.TrimSpace(record.Canonical)
		folder := strings.TrimSpace(record.Folder)
		display := strings.TrimSpace(record.Display)
		if canonical == "" || folder == "" || display == "" {
			return nil, fmt.Errorf("station entry %q: canonical, folder, and display are all required", record.Folder)
		}
		if _, exists := t.byFolder[folder]; exists {
			return nil, fmt.Errorf("duplicate station folder %q", folder)
		}

		idx := len(t.identities)
		t.identities = append(t.identities, Identity{
			Canonical: canonical,
			Folder:    folder,
			Display:   display,
			Aliases:   append([]string(nil), record.Aliases...),
		})
		t.byFolder[folder] = idx

		for _, alias := range normalizedAliases(folder, canonical, record.Aliases) {
			if alias == "" {
				return nil, fmt.Errorf("station %q: an alias normalizes to nothing", folder)
			}
			if owner, exists := t.byAlias[alias]; exists && owner != idx {
				return nil, fmt.Errorf("alias %q claimed by both %s and %s", alias, t.identities[owner].Folder, folder)
			}
			t.byAlias[alias] = idx
			if root := rootOf(alias); root != "" {
				t.addRoot(root, idx)
			}
		}
	}
	return t, nil
}

// normalizedAliases folds the folder, canonical name, and table extras into a
// sorted, deduplicated alias list for one station.
func normalizedAliases(folder, canonical string, extras []string) []string {
	seen := make(map[string]struct{}, len(extras)+2)
	for _, raw := range append([]string{folder, canonical}, extras...) {
		seen[Normalize(raw)] = struct{}{}
	}
	aliases := make([]string, 0, len(seen))
	for alias := range seen {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

func (t *table) addRoot(root string, idx int) {
	for _, existing := range t.rootIndex[root] {
		if existing == idx {
			return
		}
	}
	t.rootIndex[root] = append(t.rootIndex[root], idx)
}

var defaultTable = mustLoadTable()

func mustLoadTable() *table {
	t, err := loadTable(stationsTOML)
	if err != nil {
		panic("stations: embedded table invalid: " + err.Error())
	}
	return t
}

// All returns every known station in table order.
func All() []Identity {
	cp := make([]Identity, len(defaultTable.identities))
	copy(cp, defaultTable.identities)
	return cp
}

// ByFolder looks up a station by its output folder name.
func ByFolder(folder string) (Identity, bool) {
	idx, ok := defaultTable.byFolder[strings.TrimSpace(folder)]
	if !ok {
		return Identity{}, false
	}
	return defaultTable.identities[idx], true
}
