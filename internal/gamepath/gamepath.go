package gamepath

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ChickenNuggetsK/GTRadio/internal/services"
)

// Mode names how the audio source was obtained.
type Mode string

const (
	// ModeAuto means the game install was located automatically and archives
	// still need extraction.
	ModeAuto Mode = "auto"
	// ModeManual means the user pointed at a directory of already extracted
	// station folders.
	ModeManual Mode = "manual"
)

// Archive is one discovered audio container: an .rpf file in auto mode or a
// pre-extracted station directory in manual mode.
type Archive struct {
	Name string
	Path string
}

// Source describes where this run's audio comes from.
type Source struct {
	Mode     Mode
	GameDir  string
	InputDir string
	Archives []Archive
}

// Root returns the directory the archives were discovered under.
func (s Source) Root() string {
	if s.Mode == ModeManual {
		return s.InputDir
	}
	return s.GameDir
}

// Manual validates a user-supplied directory of pre-extracted station folders
// and lists its top-level directories. Loose files are ignored; a directory
// named after an archive (RADIO_02_POP.rpf) is fine because name matching
// strips the suffix.
func Manual(inputDir string) (Source, error) {
	inputDir = strings.TrimSpace(inputDir)
	if inputDir == "" {
		return Source{}, services.Wrap(services.ErrInvalidPath, "resolving", "manual input", "no directory given", nil)
	}
	info, err := os.Stat(inputDir)
	if err != nil {
		return Source{}, services.Wrap(services.ErrInvalidPath, "resolving", "manual input",
			fmt.Sprintf("%s does not exist", inputDir), err)
	}
	if !info.IsDir() {
		return Source{}, services.Wrap(services.ErrInvalidPath, "resolving", "manual input",
			fmt.Sprintf("%s is not a directory", inputDir), nil)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return Source{}, services.Wrap(services.ErrInvalidPath, "resolving", "manual input",
			fmt.Sprintf("cannot list %s", inputDir), err)
	}

	archives := make([]Archive, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		archives = append(archives, Archive{
			Name: entry.Name(),
			Path: filepath.Join(inputDir, entry.Name()),
		})
	}
	if len(archives) == 0 {
		return Source{}, services.Wrap(services.ErrInvalidPath, "resolving", "manual input",
			fmt.Sprintf("%s holds no station folders; expected one directory per station", inputDir), nil)
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })

	return Source{Mode: ModeManual, InputDir: inputDir, Archives: archives}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
