// Package token keeps a valid catalog session token available.
package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/catalog"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/metrics"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/Belphemur/titlovi/internal/store"
)

// Manager hands out a valid token, refreshing it through the catalog when the
// cached one is missing or expired.
type Manager struct {
	client catalog.Client
	store  store.Store
	now    func() time.Time

	// refresh serializes token requests so concurrent callers share one refresh
	refresh sync.Mutex
}

// NewManager creates a Manager backed by store
func NewManager(client catalog.Client, s store.Store) *Manager {
	return &Manager{client: client, store: s, now: time.Now}
}

// EnsureToken returns the cached token while it is valid, otherwise requests a
// new one and saves it. On failure the previously cached token is left as is.
func (m *Manager) EnsureToken(ctx context.Context) (models.Token, error) {
	if token, err := m.cached(ctx); err != nil || token != nil {
		if err != nil {
			return models.Token{}, err
		}
		return *token, nil
	}

	m.refresh.Lock()
	defer m.refresh.Unlock()

	// Another caller may have refreshed while we waited
	token, err := m.cached(ctx)
	if err != nil {
		return models.Token{}, err
	}
	if token != nil {
		return *token, nil
	}

	return m.requestToken(ctx)
}

// Refresh requests a new token regardless of the cached one
func (m *Manager) Refresh(ctx context.Context) (models.Token, error) {
	m.refresh.Lock()
	defer m.refresh.Unlock()
	return m.requestToken(ctx)
}

// Invalidate drops the cached token
func (m *Manager) Invalidate(ctx context.Context) error {
	if err := m.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear cached token: %w", err)
	}
	logger := config.GetLogger()
	logger.Info().Msg("Cached catalog token invalidated")
	return nil
}

// ValidateLogin checks the stored credentials against the catalog
func (m *Manager) ValidateLogin(ctx context.Context) error {
	creds, err := m.credentials(ctx)
	if err != nil {
		return err
	}
	if err := m.client.ValidateLogin(ctx, creds); err != nil {
		if isCanceled(err) {
			return err
		}
		return apperrors.NewAuthenticationError(creds.Username, err)
	}
	return nil
}

// Cached returns the stored token without touching the network, nil when none
func (m *Manager) Cached(ctx context.Context) (*models.Token, error) {
	token, err := m.store.GetCachedToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cached token: %w", err)
	}
	return token, nil
}

func (m *Manager) cached(ctx context.Context) (*models.Token, error) {
	token, err := m.Cached(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid(m.now()) {
		return nil, nil
	}
	return token, nil
}

func (m *Manager) requestToken(ctx context.Context) (models.Token, error) {
	logger := config.GetLogger()

	creds, err := m.credentials(ctx)
	if err != nil {
		return models.Token{}, err
	}

	logger.Debug().Str("user", creds.Username).Msg("Requesting catalog token")
	token, err := m.client.GetToken(ctx, creds)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(metrics.StatusError).Inc()
		if isCanceled(err) {
			return models.Token{}, err
		}
		logger.Warn().Err(err).Str("user", creds.Username).Msg("Catalog token refresh failed")
		return models.Token{}, apperrors.NewAuthenticationError(creds.Username, err)
	}

	if err := m.store.SaveToken(ctx, token); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(metrics.StatusError).Inc()
		return models.Token{}, fmt.Errorf("save token: %w", err)
	}
	metrics.TokenRefreshesTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	return token, nil
}

func (m *Manager) credentials(ctx context.Context) (models.Credentials, error) {
	creds, err := m.store.GetCredentials(ctx)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	if creds.IsZero() {
		return models.Credentials{}, apperrors.ErrMissingCredentials
	}
	return creds, nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
