// Package settings stores the gridlate API key.
//
// The key lives in the XDG data directory:
//
//	$XDG_DATA_HOME/gridlate/auth.json  (default: ~/.local/share/gridlate/)
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for the API key:
//  1. --api-key flag (highest priority)
//  2. GRIDLATE_API_KEY environment variable
//  3. This store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "gridlate"
	fileName    = "auth.json"

	// EnvAPIKey is the environment variable consulted before the store.
	EnvAPIKey = "GRIDLATE_API_KEY"
)

// auth is the on-disk shape of auth.json.
type auth struct {
	APIKey string `json:"apiKey"`
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for gridlate. Respects
// $XDG_DATA_HOME, falling back to ~/.local/share.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// APIKey resolves the API key: explicit flag value first, then the
// environment, then the store. Returns empty string if none is set.
func APIKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvAPIKey); env != "" {
		return env
	}
	return StoredAPIKey()
}

// StoredAPIKey reads the key from auth.json, or "" if absent or unreadable.
func StoredAPIKey() string {
	path, err := filePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var a auth
	if err := json.Unmarshal(data, &a); err != nil {
		return ""
	}
	return a.APIKey
}

// SetAPIKey persists the key with 0600 permissions, reporting success or
// failure explicitly.
func SetAPIKey(key string) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(auth{APIKey: key}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling auth file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// RemoveAPIKey deletes the stored key. Removing an absent key is not an
// error.
func RemoveAPIKey() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
