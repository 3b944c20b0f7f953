package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	_ "time/tzdata"
)

// SubtitleRecord is a single search result as returned by the catalog
type SubtitleRecord struct {
	ID            int         `json:"Id"`
	Title         string      `json:"Title"`
	Year          int         `json:"Year"`
	Type          ContentType `json:"Type"`
	Link          string      `json:"Link"`
	Season        int         `json:"Season"`
	Episode       int         `json:"Episode"`
	Special       int         `json:"Special"`
	Language      string      `json:"Lang"` // Provider form, e.g. "Hrvatski"
	Date          CatalogTime `json:"Date"`
	DownloadCount int         `json:"DownloadCount"`
	Rating        float64     `json:"Rating"`
	Release       string      `json:"Release"`
}

// Metadata returns the fields needed to download this record later
func (r SubtitleRecord) Metadata() SubtitleMetadata {
	return SubtitleMetadata{
		ID:       r.ID,
		Type:     r.Type,
		Language: r.Language,
		Season:   r.Season,
		Episode:  r.Episode,
	}
}

// SubtitleResultPage is one page of a catalog search
type SubtitleResultPage struct {
	ResultsFound   int              `json:"ResultsFound"`
	PagesAvailable int              `json:"PagesAvailable"`
	CurrentPage    int              `json:"CurrentPage"`
	Records        []SubtitleRecord `json:"SubtitleResults"`
}

// HasMore reports whether another page can be requested after this one
func (p SubtitleResultPage) HasMore() bool {
	return p.CurrentPage < p.PagesAvailable
}

// DefaultCatalogTimeZone is the zone the catalog writes zone-less timestamps in
const DefaultCatalogTimeZone = "Europe/Zagreb"

var catalogLocation atomic.Pointer[time.Location]

func init() {
	if err := SetCatalogTimeZone(DefaultCatalogTimeZone); err != nil {
		panic(err)
	}
}

// SetCatalogTimeZone changes the zone used for zone-less catalog timestamps.
// An empty name restores the default.
func SetCatalogTimeZone(name string) error {
	if strings.TrimSpace(name) == "" {
		name = DefaultCatalogTimeZone
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("catalog time zone: %w", err)
	}
	catalogLocation.Store(loc)
	return nil
}

// CatalogLocation returns the zone used for zone-less catalog timestamps
func CatalogLocation() *time.Location {
	return catalogLocation.Load()
}

// catalogTimeLayouts are the timestamp shapes the catalog has been seen to emit.
// Zone-less values are read in CatalogLocation.
var catalogTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CatalogTime decodes the catalog's .NET style timestamps
type CatalogTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler interface
func (t *CatalogTime) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalog time: %w", err)
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		t.Time = time.Time{}
		return nil
	}

	value := strings.TrimSpace(*raw)
	loc := CatalogLocation()
	for _, layout := range catalogTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("catalog time: unsupported format %q", value)
}

// MarshalJSON implements json.Marshaler interface
func (t CatalogTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
