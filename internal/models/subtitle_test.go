// Tests for subtitle.go: catalog JSON decoding and CatalogTime layouts.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSubtitleResultPage_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	payload := `{
		"ResultsFound": 2,
		"PagesAvailable": 1,
		"CurrentPage": 1,
		"SubtitleResults": [
			{"Id": 101, "Title": "Dune", "Year": 2021, "Type": 1, "Link": "https://titlovi.com/titlovi/dune-101/",
			 "Season": -1, "Episode": -1, "Special": 0, "Lang": "Hrvatski", "Date": "2021-10-22T18:31:07.527",
			 "DownloadCount": 1520, "Rating": 4.5, "Release": "Dune.2021.1080p.WEB-DL.DDP5.1.H264"},
			{"Id": 102, "Title": "Dune", "Year": 2021, "Type": 1, "Lang": "Srpski", "Date": null, "DownloadCount": 3}
		]
	}`

	var page SubtitleResultPage
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if page.ResultsFound != 2 || page.PagesAvailable != 1 || page.CurrentPage != 1 {
		t.Errorf("unexpected pagination fields: %+v", page)
	}
	if page.HasMore() {
		t.Error("HasMore() = true on the last page")
	}
	if len(page.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page.Records))
	}

	first := page.Records[0]
	if first.ID != 101 || first.Type != ContentTypeMovie || first.Language != "Hrvatski" {
		t.Errorf("unexpected first record: %+v", first)
	}
	wantDate := time.Date(2021, 10, 22, 16, 31, 7, 527000000, time.UTC) // 18:31 CEST
	if !first.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", first.Date.Time, wantDate)
	}
	if first.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", first.Rating)
	}
	if !page.Records[1].Date.IsZero() {
		t.Errorf("expected zero date for null, got %v", page.Records[1].Date.Time)
	}
}

func TestCatalogTime_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	// Zagreb is UTC+1 in winter and UTC+2 in summer
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339 with zone", `"2024-03-01T10:00:00Z"`, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), false},
		{"zone-less winter", `"2024-03-01T10:00:00"`, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), false},
		{"zone-less summer", `"2024-07-01T10:00:00"`, time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), false},
		{"seven fractional digits", `"2024-03-01T10:00:00.1234567"`, time.Date(2024, 3, 1, 9, 0, 0, 123456700, time.UTC), false},
		{"date only", `"2024-03-01"`, time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), false},
		{"empty string", `""`, time.Time{}, false},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"yesterday"`, time.Time{}, true},
		{"number", `12`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ct CatalogTime
			err := json.Unmarshal([]byte(tt.input), &ct)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("UnmarshalJSON(%s) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalJSON(%s) unexpected error: %v", tt.input, err)
			}
			if !ct.Equal(tt.want) {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, ct.Time, tt.want)
			}
		})
	}
}

func TestSetCatalogTimeZone(t *testing.T) {
	t.Parallel()
	if err := SetCatalogTimeZone("Mars/Olympus_Mons"); err == nil {
		t.Error("expected an error for an unknown zone")
	}
	if got := CatalogLocation().String(); got != DefaultCatalogTimeZone {
		t.Errorf("a failed change must keep the zone, got %q", got)
	}
}

func TestSubtitleRecord_Metadata(t *testing.T) {
	t.Parallel()
	record := SubtitleRecord{ID: 7, Type: ContentTypeEpisode, Language: "Bosanski", Season: 2, Episode: 5, DownloadCount: 99}
	want := SubtitleMetadata{ID: 7, Type: ContentTypeEpisode, Language: "Bosanski", Season: 2, Episode: 5}
	if got := record.Metadata(); got != want {
		t.Errorf("Metadata() = %+v, want %+v", got, want)
	}
}
