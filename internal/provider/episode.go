package provider

import (
	"context"
	"strings"

	"github.com/Belphemur/titlovi/internal/archive"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/Belphemur/titlovi/internal/search"
)

// EpisodeProvider searches episode subtitles, including season packs
type EpisodeProvider struct {
	engine
}

// NewEpisodeProvider creates an EpisodeProvider
func NewEpisodeProvider(deps Dependencies) *EpisodeProvider {
	return &EpisodeProvider{engine: newEngine(deps, EpisodeProviderName, models.ContentTypeEpisode)}
}

// Search runs a season-wide search and an episode search and merges them.
// Every candidate is stamped with the requested episode so a season pack
// resolves to the right file on fetch.
func (p *EpisodeProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.RankedCandidate, error) {
	logger := config.GetLogger()

	if p.disabled(req) {
		return []models.RankedCandidate{}, nil
	}

	imdbID := strings.TrimSpace(req.SeriesImdbID)
	series := strings.TrimSpace(req.SeriesName)
	if (imdbID == "" && series == "") || req.Season <= 0 || req.Episode <= 0 {
		logger.Debug().
			Str("series", series).
			Int("season", req.Season).
			Int("episode", req.Episode).
			Msg("Episode search without series and episode numbers, nothing to search")
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

	season := req.Season
	criteria := models.SearchCriteria{
		ImdbID:      imdbID,
		Language:    lang,
		ContentType: models.ContentTypeEpisode,
		Season:      &season,
	}
	if imdbID == "" {
		criteria.Query = series
	}

	records, err := p.Collector.Collect(ctx, token, criteria, search.WithoutEpisode(), search.WithEpisode(req.Episode))
	if err != nil {
		return p.searchDone(nil, err)
	}

	candidates := p.rank(ctx, req, records, func(meta *models.SubtitleMetadata) {
		meta.Season = req.Season
		meta.Episode = req.Episode
	})
	logger.Info().
		Str("series", series).
		Str("imdbID", imdbID).
		Int("season", req.Season).
		Int("episode", req.Episode).
		Str("language", lang).
		Int("candidates", len(candidates)).
		Msg("Episode subtitle search finished")
	return p.searchDone(candidates, nil)
}

// Fetch downloads the candidate and picks the file for its episode
func (p *EpisodeProvider) Fetch(ctx context.Context, id string) (*models.FetchResult, error) {
	return p.fetch(ctx, id, func(files []models.ExtractedSubtitleFile, meta models.SubtitleMetadata) (*models.ExtractedSubtitleFile, error) {
		return archive.MatchEpisode(files, meta.Season, meta.Episode)
	})
}
