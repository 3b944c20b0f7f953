package archive

import (
	"errors"
	"testing"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/models"
)

func TestParseEpisode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		wantSeason  int
		wantEpisode int
		wantOK      bool
	}{
		{"Show.S02E05.720p.srt", 2, 5, true},
		{"show.s2e5.srt", 2, 5, true},
		{"Show S02.E05.srt", 2, 5, true},
		{"Show_s10_e12.srt", 10, 12, true},
		{"Show-S01-E100.srt", 1, 100, true},
		{"Show.2x05.srt", 0, 0, false},
		{"Movie.2020.srt", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			season, episode, ok := ParseEpisode(tt.name)
			if ok != tt.wantOK || season != tt.wantSeason || episode != tt.wantEpisode {
				t.Errorf("ParseEpisode(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tt.name, season, episode, ok, tt.wantSeason, tt.wantEpisode, tt.wantOK)
			}
		})
	}
}

func TestMatchEpisode(t *testing.T) {
	t.Parallel()
	files := []models.ExtractedSubtitleFile{
		{Name: "Show.S02E05.srt", Content: []byte("five")},
		{Name: "Show.S02E06.srt", Content: []byte("six")},
		{Name: "Show.S02E50.srt", Content: []byte("fifty")},
	}

	got, err := MatchEpisode(files, 2, 5)
	if err != nil {
		t.Fatalf("MatchEpisode(2, 5) error = %v", err)
	}
	if string(got.Content) != "five" {
		t.Errorf("MatchEpisode(2, 5) = %q, want %q", got.Content, "five")
	}

	got, err = MatchEpisode(files, 2, 50)
	if err != nil || string(got.Content) != "fifty" {
		t.Errorf("MatchEpisode(2, 50) = %v, %v", got, err)
	}

	_, err = MatchEpisode(files, 2, 9)
	if !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Fatalf("expected ErrNotFound for S02E09, got %v", err)
	}
	var miss *apperrors.ErrSubtitleNotFoundInArchive
	if !errors.As(err, &miss) || miss.FileCount != 3 {
		t.Errorf("expected archive miss over 3 files, got %+v", miss)
	}
}

func TestMatchEpisode_WrongSeason(t *testing.T) {
	t.Parallel()
	files := []models.ExtractedSubtitleFile{{Name: "Show.S01E05.srt"}}
	if _, err := MatchEpisode(files, 2, 5); err == nil {
		t.Error("expected a season mismatch to miss")
	}
}

func TestMatchEpisode_FirstMatchWins(t *testing.T) {
	t.Parallel()
	files := []models.ExtractedSubtitleFile{
		{Name: "Show.S03E02.HDTV.srt", Content: []byte("hdtv")},
		{Name: "Show.S03E02.WEB.srt", Content: []byte("web")},
	}
	got, err := MatchEpisode(files, 3, 2)
	if err != nil || string(got.Content) != "hdtv" {
		t.Errorf("MatchEpisode() = %v, %v, want the first entry", got, err)
	}
}

func TestMatchEpisode_UnnamedFallbackFile(t *testing.T) {
	t.Parallel()
	_, err := MatchEpisode([]models.ExtractedSubtitleFile{{Name: "", Content: []byte("raw")}}, 1, 1)
	if !errors.Is(err, &apperrors.ErrSubtitleNotFoundInArchive{}) {
		t.Errorf("expected archive miss, got %v", err)
	}
}
