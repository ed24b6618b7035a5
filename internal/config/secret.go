package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const secretBytes = 32

// secretPathFor keeps the generated signing secret next to the database.
func secretPathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), ".session_secret")
}

// loadOrCreateSecret reads the session signing secret from path, creating a
// random one on first run.
func loadOrCreateSecret(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err == nil {
		if secret := parseSecret(string(content)); secret != "" {
			return secret, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read session secret: %w", err)
	}

	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write session secret: %w", err)
	}

	return secret, nil
}

// parseSecret returns the trimmed secret, or "" if it is too short to use.
func parseSecret(content string) string {
	secret := strings.TrimSpace(content)
	if len(secret) < secretBytes {
		return ""
	}
	return secret
}
