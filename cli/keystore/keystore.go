// Package keystore provides secure storage for API keys.
package keystore

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultKeyName is the entry the CLI reads the HyperBee api key from.
const DefaultKeyName = "hyperbee"

// EnvPassphrase names the environment variable holding the keystore
// passphrase.
const EnvPassphrase = "HYPERBEE_KEYSTORE_PASSPHRASE"

// Keystore defines the interface for secure key storage.
type Keystore interface {
	// Set stores a key-value pair.
	Set(name, value string) error
	// Get retrieves a value by name. Returns error if not found.
	Get(name string) (string, error)
	// Delete removes a key by name.
	Delete(name string) error
	// List returns all stored key names.
	List() ([]string, error)
}

// ErrKeyNotFound is returned when a requested key does not exist.
type ErrKeyNotFound struct {
	Name string
}

func (e *ErrKeyNotFound) Error() string {
	return "key not found: " + e.Name
}

// MasterKeySource supplies the secret the file encryption key is derived from.
type MasterKeySource interface {
	GetMasterKey() ([]byte, error)
}

// PassphraseSource uses a fixed passphrase.
type PassphraseSource string

// GetMasterKey returns the passphrase bytes.
func (p PassphraseSource) GetMasterKey() ([]byte, error) {
	return []byte(p), nil
}

// EnvOrMachineSource reads EnvPassphrase and falls back to a key derived
// from the host and user names. The fallback only protects the file from
// casual reads on other machines.
type EnvOrMachineSource struct{}

// GetMasterKey returns the passphrase from the environment or the machine key.
func (EnvOrMachineSource) GetMasterKey() ([]byte, error) {
	if p := os.Getenv(EnvPassphrase); p != "" {
		return []byte(p), nil
	}
	return machineKey(), nil
}

func machineKey() []byte {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	sum := sha256.Sum256([]byte(hostname + ":" + username + ":hyperbee-keystore"))
	return sum[:]
}

// DefaultKeystorePath returns the default keystore file path.
// - macOS/Linux: ~/.hyperbee/keys.enc
// - Windows: %USERPROFILE%\.hyperbee\keys.enc
func DefaultKeystorePath() string {
	var homeDir string
	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}
	return filepath.Join(homeDir, ".hyperbee", "keys.enc")
}

// NewKeystore opens the default keystore.
func NewKeystore() (Keystore, error) {
	return NewFileKeystore(DefaultKeystorePath(), EnvOrMachineSource{})
}
