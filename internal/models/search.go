package models

import "time"

// SearchCriteria is the catalog-facing form of a search
type SearchCriteria struct {
	Query                    string
	ImdbID                   string
	Language                 string // Provider form, e.g. "Hrvatski"
	ContentType              ContentType
	Season                   *int
	Episode                  *int
	Page                     int
	IgnoreLanguageAndEpisode bool
}

// SearchRequest describes what the media library is looking for
type SearchRequest struct {
	ContentType       ContentType
	Name              string // Movie title or episode name
	SeriesName        string
	ImdbID            string
	SeriesImdbID      string
	Language          string // ISO 639-1 or 639-2 code
	Season            int
	Episode           int
	MediaPath         string
	DisabledProviders []string
}

// SubtitleMetadata is the payload of a candidate identifier. It carries
// everything Fetch needs, so no search state has to be kept between calls.
type SubtitleMetadata struct {
	ID       int         `json:"i"`
	Type     ContentType `json:"t"`
	Language string      `json:"l"`
	Season   int         `json:"s"`
	Episode  int         `json:"e"`
}

// RankedCandidate is a scored search result exposed to callers
type RankedCandidate struct {
	ID            string    `json:"id"`
	ProviderName  string    `json:"providerName"`
	Name          string    `json:"name"`
	Language      string    `json:"language"` // ISO 639-2
	Release       string    `json:"release"`
	DownloadCount int       `json:"downloadCount"`
	Rating        float64   `json:"rating"`
	UploadedAt    time.Time `json:"uploadedAt"`
	Score         float64   `json:"score"`

	Metadata SubtitleMetadata `json:"-"`
}
