package gamepath

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ChickenNuggetsK/GTRadio/internal/services"
	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
)

const (
	steamAppID        = "271590"
	defaultInstallDir = "Grand Theft Auto V"
)

var (
	libraryPathPattern = regexp.MustCompile(`"path"\s+"((?:\\.|[^"\\])*)"`)
	installDirPattern  = regexp.MustCompile(`"installdir"\s+"((?:\\.|[^"\\])*)"`)
)

// AutoDetect locates the Steam install of Grand Theft Auto V and enumerates
// its radio archives: the base-game set under x64/audio/sfx plus RADIO_*.rpf
// packs under update/x64/dlcpacks. The first archive found for a station wins;
// later copies of the same station are dropped.
func AutoDetect() (Source, error) {
	gameDir, err := findGameDir()
	if err != nil {
		return Source{}, err
	}
	archives := discoverArchives(gameDir)
	if len(archives) == 0 {
		return Source{}, services.Wrap(services.ErrNotFound, "resolving", "steam",
			fmt.Sprintf("found %s but no radio archives under it; pass --input <dir> to use pre-extracted audio", gameDir), nil)
	}
	return Source{Mode: ModeAuto, GameDir: gameDir, Archives: archives}, nil
}

func findGameDir() (string, error) {
	for _, root := range steamRoots() {
		if !isDir(root) {
			continue
		}
		for _, library := range libraryDirs(root) {
			if gameDir, ok := gameDirIn(library); ok {
				return gameDir, nil
			}
		}
	}
	return "", services.Wrap(services.ErrNotFound, "resolving", "steam",
		"no Grand Theft Auto V install found; pass --input <dir> to use pre-extracted audio", nil)
}

// steamRoots lists candidate Steam installations, registry hits first.
func steamRoots() []string {
	roots := registrySteamPaths()
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, "Library", "Application Support", "Steam"),
		)
	}
	roots = append(roots, `C:\Program Files (x86)\Steam`)
	return dedupe(roots)
}

// libraryDirs returns the Steam root itself plus every extra library listed in
// steamapps/libraryfolders.vdf.
func libraryDirs(steamRoot string) []string {
	libraries := []string{steamRoot}
	data, err := os.ReadFile(filepath.Join(steamRoot, "steamapps", "libraryfolders.vdf"))
	if err == nil {
		libraries = append(libraries, parseLibraryPaths(string(data))...)
	}
	return dedupe(libraries)
}

func gameDirIn(library string) (string, bool) {
	manifest := filepath.Join(library, "steamapps", "appmanifest_"+steamAppID+".acf")
	data, err := os.ReadFile(manifest)
	if err != nil {
		return "", false
	}
	install := parseInstallDir(string(data))
	if install == "" {
		install = defaultInstallDir
	}
	gameDir := filepath.Join(library, "steamapps", "common", install)
	if !isDir(gameDir) {
		return "", false
	}
	return gameDir, true
}

func discoverArchives(gameDir string) []Archive {
	mapper := stations.NewMapper()
	seen := make(map[string]struct{})
	var archives []Archive

	add := func(key string, archive Archive) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		archives = append(archives, archive)
	}

	sfxDir := filepath.Join(gameDir, "x64", "audio", "sfx")
	for _, identity := range stations.All() {
		path := filepath.Join(sfxDir, identity.Folder+".rpf")
		if isFile(path) {
			add(identity.Folder, Archive{Name: identity.Folder + ".rpf", Path: path})
		}
	}

	// DLC stations live in their own packs. Unknown RADIO_* archives are kept
	// so the mapping stage can surface them instead of dropping them here.
	dlcDir := filepath.Join(gameDir, "update", "x64", "dlcpacks")
	_ = filepath.WalkDir(dlcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if !strings.HasPrefix(strings.ToUpper(name), "RADIO_") || !strings.EqualFold(filepath.Ext(name), ".rpf") {
			return nil
		}
		key := stations.Normalize(name)
		if match, miss := mapper.Map(name); miss == nil {
			key = match.Identity.Folder
		}
		add(key, Archive{Name: name, Path: path})
		return nil
	})

	return archives
}

func parseLibraryPaths(vdf string) []string {
	matches := libraryPathPattern.FindAllStringSubmatch(vdf, -1)
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		if path := unescapeVDF(match[1]); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func parseInstallDir(acf string) string {
	match := installDirPattern.FindStringSubmatch(acf)
	if match == nil {
		return ""
	}
	return unescapeVDF(match[1])
}

// unescapeVDF undoes the two escapes Valve's format uses inside quoted values.
func unescapeVDF(s string) string {
	return strings.NewReplacer(`\\`, `\`, `\"`, `"`).Replace(s)
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}
