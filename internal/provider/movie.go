package provider

import (
	"context"
	"strings"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
)

// MovieProvider searches movie subtitles
type MovieProvider struct {
	engine
}

// NewMovieProvider creates a MovieProvider
func NewMovieProvider(deps Dependencies) *MovieProvider {
	return &MovieProvider{engine: newEngine(deps, MovieProviderName, models.ContentTypeMovie)}
}

// Search looks up by IMDB id when known, otherwise by title. An IMDB search
// with no results is retried once by title.
func (p *MovieProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.RankedCandidate, error) {
	logger := config.GetLogger()

	if p.disabled(req) {
		return []models.RankedCandidate{}, nil
	}

	imdbID := strings.TrimSpace(req.ImdbID)
	name := strings.TrimSpace(req.Name)
	if imdbID == "" && name == "" {
		logger.Debug().Msg("Movie search without IMDB id or title, nothing to search")
		return p.searchDone(nil, nil)
	}
	lang, ok := providerLanguage(req.Language)
	if !ok {
		logger.Debug().Str("language", req.Language).Msg("Language not carried by Titlovi.com")
		return p.searchDone(nil, nil)
	}

	token, ok, err := p.token(ctx)
	if err != nil || !ok {
		return p.searchDone(nil, err)
	}

	criteria := models.SearchCriteria{
		ImdbID:      imdbID,
		Language:    lang,
		ContentType: models.ContentTypeMovie,
	}
	if imdbID == "" {
		criteria.Query = name
	}

	records, err := p.Collector.Collect(ctx, token, criteria)
	if err != nil {
		return p.searchDone(nil, err)
	}
	if len(records) == 0 && imdbID != "" && name != "" {
		logger.Debug().Str("imdbID", imdbID).Str("title", name).Msg("No results by IMDB id, retrying by title")
		criteria.ImdbID = ""
		criteria.Query = name
		if records, err = p.Collector.Collect(ctx, token, criteria); err != nil {
			return p.searchDone(nil, err)
		}
	}

	candidates := p.rank(ctx, req, records, nil)
	logger.Info().
		Str("imdbID", imdbID).
		Str("title", name).
		Str("language", lang).
		Int("candidates", len(candidates)).
		Msg("Movie subtitle search finished")
	return p.searchDone(candidates, nil)
}

// Fetch downloads the candidate and returns its first subtitle file
func (p *MovieProvider) Fetch(ctx context.Context, id string) (*models.FetchResult, error) {
	return p.fetch(ctx, id, firstFile)
}

func firstFile(files []models.ExtractedSubtitleFile, meta models.SubtitleMetadata) (*models.ExtractedSubtitleFile, error) {
	if len(files) == 0 {
		return nil, apperrors.NewNotFoundError("subtitle file", meta.ID)
	}
	return &files[0], nil
}
