package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Belphemur/titlovi/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS credentials (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    username TEXT NOT NULL,
    password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS token (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    token      TEXT    NOT NULL,
    user_id    INTEGER NOT NULL,
    user_name  TEXT    NOT NULL,
    expires_at TEXT    NOT NULL
);`

// SQLiteStore keeps state in single-row SQLite tables
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	_ = os.Chmod(path, 0o600)

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) GetCredentials(ctx context.Context) (models.Credentials, error) {
	var creds models.Credentials
	err := s.db.QueryRowContext(ctx, `SELECT username, password FROM credentials WHERE id = 1`).
		Scan(&creds.Username, &creds.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credentials{}, nil
	}
	if err != nil {
		return models.Credentials{}, fmt.Errorf("query credentials: %w", err)
	}
	return creds, nil
}

func (s *SQLiteStore) GetCachedToken(ctx context.Context) (*models.Token, error) {
	var (
		token     models.Token
		expiresAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT token, user_id, user_name, expires_at FROM token WHERE id = 1`).
		Scan(&token.ID, &token.UserID, &token.UserName, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}

	token.ExpirationDate, err = time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse token expiry %q: %w", expiresAt, err)
	}
	return &token, nil
}

func (s *SQLiteStore) SaveToken(ctx context.Context, token models.Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token (id, token, user_id, user_name, expires_at) VALUES (1, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            token = excluded.token,
            user_id = excluded.user_id,
            user_name = excluded.user_name,
            expires_at = excluded.expires_at`,
		token.ID, token.UserID, token.UserName, token.ExpirationDate.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM token`); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveCredentials(ctx context.Context, creds models.Credentials) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous models.Credentials
	err = tx.QueryRowContext(ctx, `SELECT username, password FROM credentials WHERE id = 1`).
		Scan(&previous.Username, &previous.Password)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query credentials: %w", err)
	}
	if previous != creds {
		if _, err := tx.ExecContext(ctx, `DELETE FROM token`); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credentials (id, username, password) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET username = excluded.username, password = excluded.password`,
		creds.Username, creds.Password,
	); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
