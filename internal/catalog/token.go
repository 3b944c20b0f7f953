package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/google/uuid"
)

// tokenResponse is the gettoken payload. ExpirationDate has no zone.
type tokenResponse struct {
	ExpirationDate models.CatalogTime `json:"ExpirationDate"`
	Token          string             `json:"Token"`
	UserID         int                `json:"UserId"`
	UserName       string             `json:"UserName"`
}

// GetToken exchanges credentials for a session token
func (c *HTTPClient) GetToken(ctx context.Context, creds models.Credentials) (models.Token, error) {
	logger := config.GetLogger()

	query := url.Values{}
	query.Set("username", creds.Username)
	query.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.kodiBase, OpGetToken, query), nil)
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(OpGetToken, req)
	if err != nil {
		return models.Token{}, err
	}

	var payload tokenResponse
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return models.Token{}, apperrors.NewTransportError(OpGetToken, http.StatusOK, fmt.Errorf("failed to decode token: %w", err))
	}
	if _, err := uuid.Parse(payload.Token); err != nil {
		return models.Token{}, apperrors.NewTransportError(OpGetToken, http.StatusOK, fmt.Errorf("malformed token id: %w", err))
	}

	token := models.Token{
		ID:             payload.Token,
		UserID:         payload.UserID,
		UserName:       payload.UserName,
		ExpirationDate: payload.ExpirationDate.Time,
	}
	logger.Info().
		Str("user", token.UserName).
		Int("userID", token.UserID).
		Time("expiresAt", token.ExpirationDate).
		Msg("Obtained catalog token")
	return token, nil
}

// ValidateLogin checks credentials without issuing a token
func (c *HTTPClient) ValidateLogin(ctx context.Context, creds models.Credentials) error {
	body, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.kodiBase, OpValidateLogin, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	_, err = c.do(OpValidateLogin, req)
	return err
}
