// Package scoring ranks subtitle candidates against the streams of the local
// media file using fuzzy matching on the release description.
package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Belphemur/titlovi/internal/models"
	"github.com/agnivade/levenshtein"
)

// PartialRatio returns a similarity in [0, 100] between the shorter string and
// its best aligned substring of the longer one. Containment scores 100 and an
// empty input scores 0.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(string(longer), string(shorter)) {
		return 100
	}

	needle := string(shorter)
	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := string(longer[start : start+len(shorter)])
		distance := levenshtein.ComputeDistance(needle, window)
		similarity := int(math.Round(100 * (1 - float64(distance)/float64(len(shorter)))))
		if similarity > best {
			best = similarity
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Score sums the partial ratios of every video codec, video height and audio
// codec against the release description. An empty release scores 0.
func Score(streams []models.MediaStreamSummary, release string) float64 {
	release = strings.ToLower(strings.TrimSpace(release))
	if release == "" {
		return 0
	}

	var score int
	for _, stream := range streams {
		codec := strings.ToLower(stream.Codec)
		switch stream.Type {
		case models.StreamTypeVideo:
			score += PartialRatio(codec, release)
			if stream.Height > 0 {
				score += PartialRatio(strconv.Itoa(stream.Height), release)
			}
		case models.StreamTypeAudio:
			score += PartialRatio(codec, release)
		}
	}
	return float64(score)
}

// Rank orders candidates by score, then download count, then rating, all
// descending. Candidates that tie on all three keep their relative order.
func Rank(candidates []models.RankedCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DownloadCount != b.DownloadCount {
			return a.DownloadCount > b.DownloadCount
		}
		return a.Rating > b.Rating
	})
}
