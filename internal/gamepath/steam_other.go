//go:build !windows

package gamepath

func registrySteamPaths() []string {
	return nil
}
