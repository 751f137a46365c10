package discovery

import (
	"regexp"
	"strings"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// badNamePatterns flag playlist-style channel names that are not artists.
var badNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(music for|music to|music with)\b`),
	regexp.MustCompile(`\b(study|focus|deep focus|concentration)\b`),
	regexp.MustCompile(`\b(background music|ambient music|sleep music|meditation music)\b`),
	regexp.MustCompile(`\b(relax|relaxing|calm|chill)\b`),
	regexp.MustCompile(`\b(white noise|rain sounds|ocean sounds)\b`),
	regexp.MustCompile(`\b(work music|office music|productivity)\b`),
	regexp.MustCompile(`\b(instrumental music|lofi)\b`),
}

// IsJunkName reports whether a discovered name looks like playlist slop
// rather than an artist.
func IsJunkName(name string) bool {
	if name == "" {
		return true
	}
	lower := strings.ToLower(name)
	if len(lower) > 60 {
		return true
	}
	if strings.Count(lower, ",") >= 3 {
		return true
	}
	for _, pat := range badNamePatterns {
		if pat.MatchString(lower) {
			return true
		}
	}
	return false
}

// meetsFloors applies the minimum-audience filter. Stubs whose connector
// reported no counts at all pass through; floors only reject accounts we
// know are too small.
func meetsFloors(stub models.CandidateStub) bool {
	if stub.Followers == 0 && stub.TrackCount == 0 {
		return true
	}
	return stub.Followers >= constants.MinCandidateFollowers || stub.TrackCount >= constants.MinCandidateTracks
}
