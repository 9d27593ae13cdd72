//go:build windows

package gamepath

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// registrySteamPaths reads the Steam client's own record of where it lives.
func registrySteamPaths() []string {
	key, err := registry.OpenKey(registry.CURRENT_USER, `Software\Valve\Steam`, registry.QUERY_VALUE)
	if err != nil {
		return nil
	}
	defer key.Close()

	value, _, err := key.GetStringValue("SteamPath")
	if err != nil {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return []string{filepath.Clean(value)}
}
