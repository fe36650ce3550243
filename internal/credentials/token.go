// Package credentials stores the rendering-API token in the OS keyring, with
// a file fallback for headless environments (CI, containers) where no keyring
// daemon is available.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "zillow-scraper"
	// tokenKey is the keyring account under which the token is stored
	tokenKey = "api-token"
	// fallbackDir is the directory for file-based token storage
	fallbackDir = ".zillow-scraper"
)

// useFileBasedStorage reports whether the keyring is unusable and the file
// fallback should be used instead. The result is cached per process.
var fileBasedStorageCache *bool

func useFileBasedStorage() bool {
	if fileBasedStorageCache != nil {
		return *fileBasedStorageCache
	}

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileBasedStorageCache = &result
		return true
	}

	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := (err != nil)
	fileBasedStorageCache = &result

	if !result {
		_ = keyring.Delete(KeyringService, testKey)
	}

	return result
}

// tokenPath returns the fallback file path for the token
func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, fallbackDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

// SaveToken stores the API token
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if useFileBasedStorage() {
		path, err := tokenPath()
		if err != nil {
			return fmt.Errorf("failed to resolve token path: %w", err)
		}
		if err := os.WriteFile(path, []byte(token), 0600); err != nil {
			return fmt.Errorf("failed to save token file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, tokenKey, token); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

// LoadToken retrieves the stored API token. Returns an empty string without
// error when no token has been stored.
func LoadToken() (string, error) {
	if useFileBasedStorage() {
		path, err := tokenPath()
		if err != nil {
			return "", fmt.Errorf("failed to resolve token path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	token, err := keyring.Get(KeyringService, tokenKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token from keyring: %w", err)
	}
	return token, nil
}

// DeleteToken removes the stored API token
func DeleteToken() error {
	if useFileBasedStorage() {
		path, err := tokenPath()
		if err != nil {
			return fmt.Errorf("failed to resolve token path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete token file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, tokenKey); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// Redact masks a token for display, keeping only the first and last four characters
func Redact(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
