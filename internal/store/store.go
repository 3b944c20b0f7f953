// Package store persists the catalog credentials and the cached session token.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
)

// Store holds the credentials and cached token. There is one logical store per
// process and it is injected wherever a token is needed.
type Store interface {
	GetCredentials(ctx context.Context) (models.Credentials, error)
	// GetCachedToken returns nil when no token is cached
	GetCachedToken(ctx context.Context) (*models.Token, error)
	SaveToken(ctx context.Context, token models.Token) error
	// ClearToken is idempotent
	ClearToken(ctx context.Context) error
	SaveCredentials(ctx context.Context, creds models.Credentials) error
	Close() error
}

// New opens the store selected by the store section of cfg. Credentials set in
// the configuration take precedence over stored ones.
func New(cfg *config.Config) (Store, error) {
	var (
		inner Store
		err   error
	)

	switch strings.ToLower(cfg.Store.Type) {
	case "memory":
		inner = NewMemoryStore()
	case "", "file", "toml":
		inner = NewFileStore(defaultPath(cfg.Store.Path, ".toml"))
	case "sqlite":
		inner, err = OpenSQLite(defaultPath(cfg.Store.Path, ".db"))
	default:
		return nil, fmt.Errorf("store: unknown type %q (expected memory, file or sqlite)", cfg.Store.Type)
	}
	if err != nil {
		return nil, err
	}

	creds := models.Credentials{Username: cfg.Credentials.Username, Password: cfg.Credentials.Password}
	if creds.IsZero() {
		return inner, nil
	}
	return &configCredentials{Store: inner, creds: creds}, nil
}

// defaultPath swaps the extension of the state file for the chosen backend
func defaultPath(path, ext string) string {
	if path == "" {
		return "titlovi-state" + ext
	}
	current := filepath.Ext(path)
	if current == ".toml" || current == ".db" {
		return strings.TrimSuffix(path, current) + ext
	}
	return path
}

// configCredentials overrides the stored credentials with configured ones
type configCredentials struct {
	Store
	creds models.Credentials
}

func (c *configCredentials) GetCredentials(context.Context) (models.Credentials, error) {
	return c.creds, nil
}
