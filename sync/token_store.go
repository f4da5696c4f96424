// ABOUTME: OAuth token persistence backends
// ABOUTME: Stores the Google token as a 0600 JSON file under XDG data or in the OS keyring
package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"

	"github.com/harperreed/gcalsync/config"
)

// TokenStore persists the OAuth token between runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
	Location() string
}

// NewTokenStore picks the backend named by the config.
func NewTokenStore(cfg *config.Config) (TokenStore, error) {
	switch cfg.TokenStore {
	case config.TokenStoreFile, "":
		path := cfg.TokenFile
		if path == "" {
			path = TokenPath()
		}
		return &FileTokenStore{Path: path}, nil
	case config.TokenStoreKeyring:
		return NewKeyringTokenStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

// TokenPath returns the XDG-compliant default path for the token file.
func TokenPath() string {
	return filepath.Join(config.DataDir(), "token.json")
}

// FileTokenStore keeps the token in a JSON file.
type FileTokenStore struct {
	Path string
}

// Load reads the token file.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}

// Save writes the token file with restricted permissions.
func (s *FileTokenStore) Save(token *oauth2.Token) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

func (s *FileTokenStore) Location() string {
	return s.Path
}

// KeyringTokenStore keeps the token in the OS keychain.
type KeyringTokenStore struct {
	Service string
	User    string
}

// NewKeyringTokenStore returns a store under the gcalsync keyring service.
func NewKeyringTokenStore() *KeyringTokenStore {
	return &KeyringTokenStore{
		Service: config.AppName,
		User:    "google-oauth-token",
	}
}

// Load reads the token from the keyring.
func (s *KeyringTokenStore) Load() (*oauth2.Token, error) {
	secret, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token from keyring: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(secret), &token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}

// Save writes the token to the keyring.
func (s *KeyringTokenStore) Save(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := keyring.Set(s.Service, s.User, string(data)); err != nil {
		return fmt.Errorf("failed to write token to keyring: %w", err)
	}

	return nil
}

func (s *KeyringTokenStore) Location() string {
	return "keyring:" + s.Service + "/" + s.User
}
