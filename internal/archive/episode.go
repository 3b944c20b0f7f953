package archive

import (
	"regexp"
	"strconv"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
)

var episodeMarker = regexp.MustCompile(`(?i)s(\d+)[ ._-]?e(\d+)`)

// ParseEpisode recovers the season and episode from a SxxEyy marker in name.
func ParseEpisode(name string) (season, episode int, ok bool) {
	m := episodeMarker.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	episode, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return season, episode, true
}

// MatchEpisode returns the first file whose name carries the requested season
// and episode, or *apperrors.ErrSubtitleNotFoundInArchive.
func MatchEpisode(files []models.ExtractedSubtitleFile, season, episode int) (*models.ExtractedSubtitleFile, error) {
	logger := config.GetLogger()

	for i := range files {
		s, e, ok := ParseEpisode(files[i].Name)
		logger.Debug().
			Str("entry", files[i].Name).
			Bool("marker", ok).
			Int("season", s).
			Int("episode", e).
			Msg("Checking archive entry")
		if ok && s == season && e == episode {
			return &files[i], nil
		}
	}

	return nil, &apperrors.ErrSubtitleNotFoundInArchive{Season: season, Episode: episode, FileCount: len(files)}
}
