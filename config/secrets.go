package config

import (
	"errors"
	"fmt"
	"os/user"

	"github.com/zalando/go-keyring"
)

// Keyring entries.
const (
	SMTPPasswordKey      = AppName + ":smtp_password"
	CloudRefreshTokenKey = AppName + ":onedrive_refresh_token"
)

// Secrets stores credentials outside the JSON file.
type Secrets interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// KeyringSecrets keeps secrets in the OS keyring, keyed by the current OS user.
type KeyringSecrets struct {
	userid string
}

// NewKeyringSecrets creates a keyring-backed store for the current user.
func NewKeyringSecrets() (*KeyringSecrets, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	return &KeyringSecrets{userid: u.Uid}, nil
}

// Get returns the secret for key, or an empty string when none is stored.
func (k *KeyringSecrets) Get(key string) (string, error) {
	v, err := keyring.Get(key, k.userid)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s from keyring: %w", key, err)
	}
	return v, nil
}

// Set stores value under key. An empty value deletes the entry.
func (k *KeyringSecrets) Set(key, value string) error {
	if value == "" {
		return k.Delete(key)
	}
	if err := keyring.Set(key, k.userid, value); err != nil {
		return fmt.Errorf("writing %s to keyring: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing entry is not an error.
func (k *KeyringSecrets) Delete(key string) error {
	err := keyring.Delete(key, k.userid)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting %s from keyring: %w", key, err)
	}
	return nil
}

// SMTPPassword resolves the SMTP password, preferring a value still present in the file.
func SMTPPassword(cfg EmailConfig, s Secrets) string {
	if cfg.SenderPassword != "" || s == nil {
		return cfg.SenderPassword
	}
	pw, err := s.Get(SMTPPasswordKey)
	if err != nil {
		return ""
	}
	return pw
}

// MigrateSecrets moves a plaintext SMTP password from cfg into s and blanks it.
// It reports whether cfg changed and should be saved.
func MigrateSecrets(cfg *Config, s Secrets) (bool, error) {
	if cfg.Email.SenderPassword == "" || s == nil {
		return false, nil
	}
	if err := s.Set(SMTPPasswordKey, cfg.Email.SenderPassword); err != nil {
		return false, err
	}
	cfg.Email.SenderPassword = ""
	return true, nil
}
