package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Secret holds an API key. Formatting, JSON and text marshaling never
// reveal the value; Expose is the only accessor.
//
//	key := NewSecret("hb-abc123")
//	fmt.Println(key)         // [REDACTED]
//	key.Fingerprint()        // "sha256:5e1f0c2a"
//	req.Header.Set("Authorization", "Bearer "+key.Expose())
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer.
func (s Secret) GoString() string {
	return "core.Secret{[REDACTED]}"
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// MarshalText implements encoding.TextMarshaler, which also covers YAML.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Expose returns the raw value, for the Authorization header.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether no value is set.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// Fingerprint returns a short, stable, non-reversible identifier of the
// value, safe to put in logs. An empty secret has an empty fingerprint.
func (s Secret) Fingerprint() string {
	if s.value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.value))
	return "sha256:" + hex.EncodeToString(sum[:4])
}
