package cli

import (
	"os"
	"path/filepath"
)

// cacheDir is the default parse-result cache: $XDG_CACHE_HOME/depscope, or
// ~/.cache/depscope.
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// sessionsDir is the default file-backed session store:
// $XDG_STATE_HOME/depscope/sessions, or ~/.local/state/depscope/sessions.
func sessionsDir() (string, error) {
	dir, err := xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// resolvedCacheDir prefers cache.dir (DEPSCOPE_CACHE_DIR) over cacheDir.
func (c *CLI) resolvedCacheDir() (string, error) {
	if dir := c.Config.Cache.Dir; dir != "" {
		return dir, nil
	}
	return cacheDir()
}

// resolvedSessionsDir prefers store.dir (DEPSCOPE_STORE_DIR) over
// sessionsDir.
func (c *CLI) resolvedSessionsDir() (string, error) {
	if dir := c.Config.Store.Dir; dir != "" {
		return dir, nil
	}
	return sessionsDir()
}
