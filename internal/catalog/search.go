package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
)

// Search fetches one page of results for criteria
func (c *HTTPClient) Search(ctx context.Context, token models.Token, criteria models.SearchCriteria) (*models.SubtitleResultPage, error) {
	logger := config.GetLogger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.kodiBase, OpSearch, searchQuery(token, criteria)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(OpSearch, req)
	if err != nil {
		return nil, err
	}

	var page models.SubtitleResultPage
	if err := json.Unmarshal(resp.body, &page); err != nil {
		return nil, apperrors.NewTransportError(OpSearch, http.StatusOK, fmt.Errorf("failed to decode search results: %w", err))
	}

	logger.Debug().
		Int("page", page.CurrentPage).
		Int("pagesAvailable", page.PagesAvailable).
		Int("resultsFound", page.ResultsFound).
		Int("records", len(page.Records)).
		Msg("Fetched search page")
	return &page, nil
}

// searchQuery encodes criteria. A free-text query wins over an IMDB id and
// the content type travels as its integer value.
func searchQuery(token models.Token, criteria models.SearchCriteria) url.Values {
	query := url.Values{}
	query.Set("token", token.ID)
	query.Set("userid", strconv.Itoa(token.UserID))

	switch {
	case criteria.Query != "":
		query.Set("query", criteria.Query)
	case criteria.ImdbID != "":
		query.Set("imdbid", criteria.ImdbID)
	}
	if criteria.ContentType != models.ContentTypeNone {
		query.Set("type", strconv.Itoa(int(criteria.ContentType)))
	}
	if criteria.Language != "" {
		query.Set("lang", criteria.Language)
	}
	if criteria.Season != nil {
		query.Set("season", strconv.Itoa(*criteria.Season))
	}
	if criteria.Episode != nil {
		query.Set("episode", strconv.Itoa(*criteria.Episode))
	}
	page := criteria.Page
	if page < 1 {
		page = 1
	}
	query.Set("pg", strconv.Itoa(page))
	if criteria.IgnoreLanguageAndEpisode {
		query.Set("ignoreLangAndEpisode", "true")
	}
	return query
}
