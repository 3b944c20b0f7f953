// Package search walks the paginated catalog search and merges the results.
package search

import (
	"context"

	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/metrics"
	"github.com/Belphemur/titlovi/internal/models"
)

// DefaultMaxPages bounds the pages fetched per variant
const DefaultMaxPages = 50

// Searcher fetches a single page of results
type Searcher interface {
	Search(ctx context.Context, token models.Token, criteria models.SearchCriteria) (*models.SubtitleResultPage, error)
}

// Variant adjusts a copy of the base criteria for one pass of Collect
type Variant func(*models.SearchCriteria)

// WithoutEpisode drops the episode so whole-season packs match too
func WithoutEpisode() Variant {
	return func(c *models.SearchCriteria) {
		c.Episode = nil
	}
}

// WithEpisode restricts the search to one episode
func WithEpisode(episode int) Variant {
	return func(c *models.SearchCriteria) {
		c.Episode = &episode
	}
}

// Options tunes an Aggregator
type Options struct {
	MaxPages    int
	Deduplicate bool
}

// Aggregator collects every page of one or more searches
type Aggregator struct {
	searcher    Searcher
	maxPages    int
	deduplicate bool
}

// NewAggregator creates an Aggregator. A MaxPages of zero uses DefaultMaxPages.
func NewAggregator(searcher Searcher, opts Options) *Aggregator {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &Aggregator{searcher: searcher, maxPages: opts.MaxPages, deduplicate: opts.Deduplicate}
}

// NewAggregatorFromConfig builds an Aggregator from the search section of cfg
func NewAggregatorFromConfig(searcher Searcher, cfg *config.Config) *Aggregator {
	return NewAggregator(searcher, Options{
		MaxPages:    cfg.Search.MaxPages,
		Deduplicate: cfg.Search.Deduplicate,
	})
}

// Collect runs base once per variant (or once when there are none) and
// concatenates every page in order. A cancelled context yields no records.
func (a *Aggregator) Collect(ctx context.Context, token models.Token, base models.SearchCriteria, variants ...Variant) ([]models.SubtitleRecord, error) {
	if len(variants) == 0 {
		variants = []Variant{func(*models.SearchCriteria) {}}
	}

	var records []models.SubtitleRecord
	for _, variant := range variants {
		criteria := base
		if base.Season != nil {
			season := *base.Season
			criteria.Season = &season
		}
		if base.Episode != nil {
			episode := *base.Episode
			criteria.Episode = &episode
		}
		variant(&criteria)

		found, err := a.collectPages(ctx, token, criteria)
		if err != nil {
			return nil, err
		}
		records = append(records, found...)
	}

	if a.deduplicate {
		records = dedupe(records)
	}
	return records, nil
}

func (a *Aggregator) collectPages(ctx context.Context, token models.Token, criteria models.SearchCriteria) ([]models.SubtitleRecord, error) {
	logger := config.GetLogger()

	var records []models.SubtitleRecord
	for fetched := 0; fetched < a.maxPages; fetched++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		criteria.Page = fetched + 1
		page, err := a.searcher.Search(ctx, token, criteria)
		if err != nil {
			return nil, err
		}
		metrics.SearchPagesTotal.Inc()
		records = append(records, page.Records...)

		if !page.HasMore() {
			return records, nil
		}
	}

	logger.Warn().
		Int("maxPages", a.maxPages).
		Int("records", len(records)).
		Msg("Search page cap reached, remaining pages skipped")
	return records, nil
}

type recordKey struct {
	id       int
	language string
}

// dedupe keeps the first occurrence of each (ID, language) pair
func dedupe(records []models.SubtitleRecord) []models.SubtitleRecord {
	seen := make(map[recordKey]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		key := recordKey{id: r.ID, language: r.Language}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
