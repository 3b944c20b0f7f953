// Package provider searches and fetches Titlovi.com subtitles for movies and
// episodes.
package provider

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/archive"
	"github.com/Belphemur/titlovi/internal/cache"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/language"
	"github.com/Belphemur/titlovi/internal/media"
	"github.com/Belphemur/titlovi/internal/metrics"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/Belphemur/titlovi/internal/scoring"
	"github.com/Belphemur/titlovi/internal/search"
)

// Provider names as shown to the media library
const (
	MovieProviderName   = "Titlovi.com - Movies"
	EpisodeProviderName = "Titlovi.com - Episodes"
)

// Provider finds and downloads subtitles for one content type
type Provider interface {
	Name() string
	ContentType() models.ContentType
	Search(ctx context.Context, req models.SearchRequest) ([]models.RankedCandidate, error)
	Fetch(ctx context.Context, id string) (*models.FetchResult, error)
}

// TokenSource hands out a valid catalog token
type TokenSource interface {
	EnsureToken(ctx context.Context) (models.Token, error)
}

// Collector gathers every result page for a search
type Collector interface {
	Collect(ctx context.Context, token models.Token, base models.SearchCriteria, variants ...search.Variant) ([]models.SubtitleRecord, error)
}

// Downloader fetches a raw subtitle payload
type Downloader interface {
	Download(ctx context.Context, mediaID int, contentType models.ContentType) ([]byte, error)
}

// Dependencies are the collaborators shared by both providers. Inspector and
// Cache are optional.
type Dependencies struct {
	Tokens     TokenSource
	Collector  Collector
	Downloader Downloader
	Extractor  *archive.Extractor
	Inspector  media.Inspector
	Cache      cache.Cache

	// FallbackEncoding is used for subtitles that are not valid UTF-8
	FallbackEncoding  string
	NormalizeEncoding bool
}

// engine holds the flow common to both providers
type engine struct {
	Dependencies
	name        string
	contentType models.ContentType
}

func newEngine(deps Dependencies, name string, contentType models.ContentType) engine {
	if deps.Extractor == nil {
		deps.Extractor = archive.New(archive.Options{})
	}
	return engine{Dependencies: deps, name: name, contentType: contentType}
}

func (e *engine) Name() string {
	return e.name
}

func (e *engine) ContentType() models.ContentType {
	return e.contentType
}

func (e *engine) disabled(req models.SearchRequest) bool {
	for _, name := range req.DisabledProviders {
		if strings.EqualFold(strings.TrimSpace(name), e.name) {
			return true
		}
	}
	return false
}

// providerLanguage translates the requested language. ok is false when a
// language was requested that the catalog does not carry.
func providerLanguage(code string) (name string, ok bool) {
	if strings.TrimSpace(code) == "" {
		return "", true
	}
	name = language.ToProvider(code)
	return name, name != ""
}

// token returns ok=false when credentials are missing so the search can
// soft-fail; any other failure is returned.
func (e *engine) token(ctx context.Context) (models.Token, bool, error) {
	token, err := e.Tokens.EnsureToken(ctx)
	if errors.Is(err, apperrors.ErrMissingCredentials) {
		logger := config.GetLogger()
		logger.Warn().Str("provider", e.name).Msg("Titlovi credentials are not configured, skipping search")
		return models.Token{}, false, nil
	}
	if err != nil {
		return models.Token{}, false, err
	}
	return token, true, nil
}

// streams probes the media file. Failures only disable scoring.
func (e *engine) streams(ctx context.Context, mediaPath string) []models.MediaStreamSummary {
	if e.Inspector == nil || strings.TrimSpace(mediaPath) == "" {
		return nil
	}
	streams, err := e.Inspector.GetStreams(ctx, mediaPath)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("path", mediaPath).Msg("Could not inspect media file, ranking without scores")
		return nil
	}
	return streams
}

// rank scores records against the media streams and encodes their ids
func (e *engine) rank(ctx context.Context, req models.SearchRequest, records []models.SubtitleRecord, stamp func(*models.SubtitleMetadata)) []models.RankedCandidate {
	streams := e.streams(ctx, req.MediaPath)

	candidates := make([]models.RankedCandidate, 0, len(records))
	for _, record := range records {
		meta := record.Metadata()
		if stamp != nil {
			stamp(&meta)
		}
		candidates = append(candidates, models.RankedCandidate{
			ID:            EncodeID(meta),
			ProviderName:  e.name,
			Name:          record.Title,
			Language:      language.FromProvider(record.Language),
			Release:       record.Release,
			DownloadCount: record.DownloadCount,
			Rating:        record.Rating,
			UploadedAt:    record.Date.Time,
			Score:         scoring.Score(streams, record.Release),
			Metadata:      meta,
		})
	}
	scoring.Rank(candidates)
	return candidates
}

func (e *engine) searchDone(candidates []models.RankedCandidate, err error) ([]models.RankedCandidate, error) {
	status := metrics.StatusSuccess
	switch {
	case err != nil:
		status = metrics.StatusError
	case len(candidates) == 0:
		status = metrics.StatusEmpty
	}
	metrics.SearchesTotal.WithLabelValues(e.contentType.String(), status).Inc()

	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []models.RankedCandidate{}
	}
	return candidates, nil
}

// download returns the raw payload, from the cache when possible
func (e *engine) download(ctx context.Context, meta models.SubtitleMetadata) ([]byte, bool, error) {
	key := fmt.Sprintf("download:%d:%d", int(meta.Type), meta.ID)
	if e.Cache != nil {
		if payload, ok := e.Cache.Get(ctx, key); ok {
			logger := config.GetLogger()
			logger.Debug().Int("mediaID", meta.ID).Msg("Download served from cache")
			return payload, true, nil
		}
	}

	payload, err := e.Downloader.Download(ctx, meta.ID, meta.Type)
	if err != nil {
		return nil, false, err
	}
	if e.Cache != nil {
		e.Cache.Set(ctx, key, payload)
	}
	return payload, false, nil
}

// fetch runs the download and extraction pipeline; pick chooses the file
func (e *engine) fetch(ctx context.Context, id string, pick func([]models.ExtractedSubtitleFile, models.SubtitleMetadata) (*models.ExtractedSubtitleFile, error)) (*models.FetchResult, error) {
	logger := config.GetLogger()

	result, cached, err := e.doFetch(ctx, id, pick)
	status := metrics.StatusSuccess
	switch {
	case err != nil:
		status = metrics.StatusError
	case cached:
		status = metrics.StatusCached
	}
	metrics.SubtitleFetchesTotal.WithLabelValues(e.contentType.String(), status).Inc()

	if err != nil {
		logger.Warn().Err(err).Str("provider", e.name).Msg("Subtitle fetch failed")
		return nil, err
	}
	logger.Info().
		Str("provider", e.name).
		Str("filename", result.Filename).
		Str("language", result.Language).
		Int("size", len(result.Content)).
		Msg("Fetched subtitle")
	return result, nil
}

func (e *engine) doFetch(ctx context.Context, id string, pick func([]models.ExtractedSubtitleFile, models.SubtitleMetadata) (*models.ExtractedSubtitleFile, error)) (*models.FetchResult, bool, error) {
	meta, err := DecodeID(id)
	if err != nil {
		return nil, false, err
	}
	if meta.Type != e.contentType {
		return nil, false, apperrors.NewInvalidIdentifierError(id, fmt.Errorf("%s id passed to %s provider", meta.Type, e.contentType))
	}

	payload, cached, err := e.download(ctx, meta)
	if err != nil {
		return nil, false, fmt.Errorf("download subtitle %d: %w", meta.ID, err)
	}

	files, err := e.Extractor.Extract(payload)
	if err != nil {
		return nil, cached, fmt.Errorf("extract subtitle %d: %w", meta.ID, err)
	}
	file, err := pick(files, meta)
	if err != nil {
		return nil, cached, err
	}

	content := file.Content
	if e.NormalizeEncoding {
		content = archive.NormalizeEncoding(content, e.FallbackEncoding)
	}

	return &models.FetchResult{
		Filename: resultName(file.Name, meta),
		Content:  content,
		Language: language.FromProvider(meta.Language),
		Format:   resultFormat(file.Name),
	}, cached, nil
}

func resultName(name string, meta models.SubtitleMetadata) string {
	if name != "" {
		return path.Base(name)
	}
	return fmt.Sprintf("%d.srt", meta.ID)
}

func resultFormat(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return "srt"
	}
	return ext
}
