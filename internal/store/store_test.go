package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "state.toml"))
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
			if err != nil {
				t.Fatalf("OpenSQLite() error: %v", err)
			}
			return s
		},
	}
}

func sampleToken() models.Token {
	return models.Token{
		ID:             "6f1c2a9e-4b7d-4a52-9d51-0c2b8e1f7a33",
		UserID:         4242,
		UserName:       "marko",
		ExpirationDate: time.Date(2026, 11, 2, 18, 30, 0, 0, time.UTC),
	}
}

func TestStore_TokenLifecycle(t *testing.T) {
	t.Parallel()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := open(t)
			defer func() { _ = s.Close() }()

			got, err := s.GetCachedToken(ctx)
			if err != nil || got != nil {
				t.Fatalf("GetCachedToken() on empty store = %v, %v; want nil, nil", got, err)
			}

			want := sampleToken()
			if err := s.SaveToken(ctx, want); err != nil {
				t.Fatalf("SaveToken() error: %v", err)
			}
			got, err = s.GetCachedToken(ctx)
			if err != nil || got == nil {
				t.Fatalf("GetCachedToken() = %v, %v", got, err)
			}
			if got.ID != want.ID || got.UserID != want.UserID || got.UserName != want.UserName {
				t.Errorf("GetCachedToken() = %+v, want %+v", *got, want)
			}
			if !got.ExpirationDate.Equal(want.ExpirationDate) {
				t.Errorf("ExpirationDate = %v, want %v", got.ExpirationDate, want.ExpirationDate)
			}

			replacement := want
			replacement.ID = "0a5d3f1e-0000-4c4c-8a8a-222222222222"
			if err := s.SaveToken(ctx, replacement); err != nil {
				t.Fatalf("SaveToken() replace error: %v", err)
			}
			got, _ = s.GetCachedToken(ctx)
			if got == nil || got.ID != replacement.ID {
				t.Errorf("token was not replaced: %+v", got)
			}

			for i := 0; i < 2; i++ {
				if err := s.ClearToken(ctx); err != nil {
					t.Fatalf("ClearToken() call %d error: %v", i+1, err)
				}
			}
			if got, _ := s.GetCachedToken(ctx); got != nil {
				t.Errorf("GetCachedToken() after clear = %+v, want nil", got)
			}
		})
	}
}

func TestStore_Credentials(t *testing.T) {
	t.Parallel()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := open(t)
			defer func() { _ = s.Close() }()

			creds, err := s.GetCredentials(ctx)
			if err != nil || !creds.IsZero() {
				t.Fatalf("GetCredentials() on empty store = %+v, %v", creds, err)
			}

			marko := models.Credentials{Username: "marko", Password: "tajna"}
			if err := s.SaveCredentials(ctx, marko); err != nil {
				t.Fatalf("SaveCredentials() error: %v", err)
			}
			if err := s.SaveToken(ctx, sampleToken()); err != nil {
				t.Fatalf("SaveToken() error: %v", err)
			}

			// Same credentials keep the token
			if err := s.SaveCredentials(ctx, marko); err != nil {
				t.Fatalf("SaveCredentials() error: %v", err)
			}
			if tok, _ := s.GetCachedToken(ctx); tok == nil {
				t.Error("token dropped when credentials did not change")
			}

			ana := models.Credentials{Username: "ana", Password: "lozinka"}
			if err := s.SaveCredentials(ctx, ana); err != nil {
				t.Fatalf("SaveCredentials() error: %v", err)
			}
			if tok, _ := s.GetCachedToken(ctx); tok != nil {
				t.Errorf("token kept after account change: %+v", tok)
			}
			if got, _ := s.GetCredentials(ctx); got != ana {
				t.Errorf("GetCredentials() = %+v, want %+v", got, ana)
			}
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.toml")

	first := NewFileStore(path)
	if err := first.SaveToken(ctx, sampleToken()); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}
	_ = first.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("state file permissions = %o, want 600", perm)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "[token]") {
		t.Errorf("state file is not TOML with a token table:\n%s", data)
	}

	second := NewFileStore(path)
	defer func() { _ = second.Close() }()
	got, err := second.GetCachedToken(ctx)
	if err != nil || got == nil || got.ID != sampleToken().ID {
		t.Errorf("second instance GetCachedToken() = %+v, %v", got, err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.toml")
	if err := os.WriteFile(path, []byte("[token\nid = "), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	defer func() { _ = s.Close() }()

	if _, err := s.GetCachedToken(context.Background()); err == nil {
		t.Error("expected decode error for corrupt state file")
	}
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.toml")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewFileStore(path)
			defer func() { _ = s.Close() }()
			if err := s.SaveToken(ctx, sampleToken()); err != nil {
				t.Errorf("SaveToken() error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := NewFileStore(path).GetCachedToken(ctx)
	if err != nil || got == nil {
		t.Fatalf("GetCachedToken() = %+v, %v", got, err)
	}
}

func TestSQLiteStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	if err := first.SaveToken(ctx, sampleToken()); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}
	_ = first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error: %v", err)
	}
	defer func() { _ = second.Close() }()
	got, err := second.GetCachedToken(ctx)
	if err != nil || got == nil || !got.ExpirationDate.Equal(sampleToken().ExpirationDate) {
		t.Errorf("GetCachedToken() after reopen = %+v, %v", got, err)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name      string
		storeType string
		path      string
		wantType  string
		wantErr   bool
	}{
		{name: "memory", storeType: "memory", wantType: "*store.MemoryStore"},
		{name: "file default", storeType: "", path: filepath.Join(dir, "a.toml"), wantType: "*store.FileStore"},
		{name: "file", storeType: "file", path: filepath.Join(dir, "b.toml"), wantType: "*store.FileStore"},
		{name: "sqlite swaps extension", storeType: "SQLite", path: filepath.Join(dir, "c.toml"), wantType: "*store.SQLiteStore"},
		{name: "unknown", storeType: "etcd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{}
			cfg.Store.Type = tt.storeType
			cfg.Store.Path = tt.path

			s, err := New(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown store type")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			defer func() { _ = s.Close() }()

			if got := typeName(s); got != tt.wantType {
				t.Errorf("New() type = %s, want %s", got, tt.wantType)
			}
			if sq, ok := s.(*SQLiteStore); ok && filepath.Ext(sq.path) != ".db" {
				t.Errorf("sqlite path = %q, want .db extension", sq.path)
			}
		})
	}
}

func TestNew_ConfiguredCredentialsWin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Store.Type = "memory"
	cfg.Credentials.Username = "marko"
	cfg.Credentials.Password = "tajna"

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.SaveCredentials(ctx, models.Credentials{Username: "ana", Password: "x"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetCredentials(ctx)
	if got.Username != "marko" {
		t.Errorf("GetCredentials() = %+v, want configured marko", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path, ext, want string
	}{
		{"", ".toml", "titlovi-state.toml"},
		{"", ".db", "titlovi-state.db"},
		{"/var/lib/titlovi/state.toml", ".db", "/var/lib/titlovi/state.db"},
		{"/var/lib/titlovi/state.sqlite", ".db", "/var/lib/titlovi/state.sqlite"},
	}
	for _, tt := range tests {
		if got := defaultPath(tt.path, tt.ext); got != tt.want {
			t.Errorf("defaultPath(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*store.MemoryStore"
	case *FileStore:
		return "*store.FileStore"
	case *SQLiteStore:
		return "*store.SQLiteStore"
	case *configCredentials:
		return "*store.configCredentials"
	}
	return "unknown"
}
