package gamepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChickenNuggetsK/GTRadio/internal/services"
)

const libraryFoldersFixture = `"libraryfolders"
{
	"0"
	{
		"path"		"/home/user/.steam/steam"
		"label"		""
		"contentid"		"8445665304148922000"
	}
	"1"
	{
		"path"		"%s"
		"label"		""
	}
}
`

const manifestFixture = `"AppState"
{
	"appid"		"271590"
	"Universe"		"1"
	"name"		"Grand Theft Auto V"
	"StateFlags"		"4"
	"installdir"		"Grand Theft Auto V"
	"LastUpdated"		"1703204523"
}
`

func TestParseLibraryPaths(t *testing.T) {
	vdf := fmt.Sprintf(libraryFoldersFixture, "/mnt/games/SteamLibrary")
	paths := parseLibraryPaths(vdf)
	if len(paths) != 2 {
		t.Fatalf("parsed %d paths, want 2: %v", len(paths), paths)
	}
	if paths[0] != "/home/user/.steam/steam" || paths[1] != "/mnt/games/SteamLibrary" {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestParseLibraryPathsUnescapesWindowsSeparators(t *testing.T) {
	vdf := `"libraryfolders" { "0" { "path"		"D:\\Games\\SteamLibrary" } }`
	paths := parseLibraryPaths(vdf)
	if len(paths) != 1 {
		t.Fatalf("parsed %d paths, want 1: %v", len(paths), paths)
	}
	if paths[0] != `D:\Games\SteamLibrary` {
		t.Errorf("path = %q, want unescaped separators", paths[0])
	}
}

func TestParseInstallDir(t *testing.T) {
	if got := parseInstallDir(manifestFixture); got != "Grand Theft Auto V" {
		t.Errorf("parseInstallDir = %q", got)
	}
	if got := parseInstallDir(`"AppState" { "appid" "271590" }`); got != "" {
		t.Errorf("parseInstallDir on manifest without installdir = %q, want empty", got)
	}
}

func TestAutoDetectFindsGameThroughSecondaryLibrary(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	steamRoot := filepath.Join(home, ".steam", "steam")
	library := filepath.Join(home, "games-library")
	writeFixture(t, filepath.Join(steamRoot, "steamapps", "libraryfolders.vdf"),
		fmt.Sprintf(libraryFoldersFixture, library))
	writeFixture(t, filepath.Join(library, "steamapps", "appmanifest_271590.acf"), manifestFixture)

	gameDir := filepath.Join(library, "steamapps", "common", "Grand Theft Auto V")
	sfx := filepath.Join(gameDir, "x64", "audio", "sfx")
	writeFixture(t, filepath.Join(sfx, "RADIO_01_CLASS_ROCK.rpf"), "rpf")
	writeFixture(t, filepath.Join(sfx, "RADIO_02_POP.rpf"), "rpf")
	dlc := filepath.Join(gameDir, "update", "x64", "dlcpacks")
	writeFixture(t, filepath.Join(dlc, "mpsecurity", "RADIO_27_DLC_PRP2022_RADIO.rpf"), "rpf")
	writeFixture(t, filepath.Join(dlc, "patchday27", "RADIO_02_POP.rpf"), "rpf")
	writeFixture(t, filepath.Join(dlc, "oddball", "RADIO_MYSTERY.rpf"), "rpf")

	source, err := AutoDetect()
	if err != nil {
		t.Fatalf("AutoDetect returned error: %v", err)
	}
	if source.Mode != ModeAuto {
		t.Errorf("Mode = %q, want auto", source.Mode)
	}
	if source.GameDir != gameDir {
		t.Errorf("GameDir = %q, want %q", source.GameDir, gameDir)
	}

	names := make([]string, 0, len(source.Archives))
	for _, archive := range source.Archives {
		names = append(names, archive.Name)
	}
	want := []string{
		"RADIO_01_CLASS_ROCK.rpf",
		"RADIO_02_POP.rpf",
		"RADIO_27_DLC_PRP2022_RADIO.rpf",
		"RADIO_MYSTERY.rpf",
	}
	if len(names) != len(want) {
		t.Fatalf("archives = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("archives = %v, want %v", names, want)
		}
	}
	// The base-game copy wins over the patchday duplicate.
	if source.Archives[1].Path != filepath.Join(sfx, "RADIO_02_POP.rpf") {
		t.Errorf("duplicate station resolved to %q, want the sfx copy", source.Archives[1].Path)
	}
}

func TestAutoDetectReportsNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := AutoDetect()
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got: %v", err)
	}
	if !strings.Contains(err.Error(), "--input") {
		t.Errorf("error should point at manual mode, got: %v", err)
	}
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
