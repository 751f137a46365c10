package discovery

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// accountURLPatterns extract a platform identity from a profile URL.
var accountURLPatterns = []struct {
	platform string
	re       *regexp.Regexp
}{
	{models.PlatformSpotify, regexp.MustCompile(`open\.spotify\.com/artist/([A-Za-z0-9]+)`)},
	{models.PlatformYouTube, regexp.MustCompile(`youtube\.com/channel/([A-Za-z0-9_\-]+)`)},
	{models.PlatformTikTok, regexp.MustCompile(`tiktok\.com/@([A-Za-z0-9._\-]+)`)},
	{models.PlatformSoundCloud, regexp.MustCompile(`soundcloud\.com/([A-Za-z0-9_\-]+)`)},
}

// ParseAccountURL resolves a profile URL to its platform identity.
func ParseAccountURL(raw string) (platform, platformID string, ok bool) {
	for _, p := range accountURLPatterns {
		if m := p.re.FindStringSubmatch(raw); m != nil {
			return p.platform, m[1], true
		}
	}
	return "", "", false
}

var tokenSplit = regexp.MustCompile(`[a-z0-9]+`)

// NormalizeName lowercases a name and reduces it to its sorted token set.
func NormalizeName(name string) []string {
	tokens := tokenSplit.FindAllString(strings.ToLower(name), -1)
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// TokenSimilarity is the Jaccard similarity of two normalized token sets.
// Two empty names are not similar.
func TokenSimilarity(a, b string) float64 {
	ta, tb := NormalizeName(a), NormalizeName(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, tok := range ta {
		set[tok] = true
	}
	var both int
	for _, tok := range tb {
		if set[tok] {
			both++
		}
	}
	union := len(ta) + len(tb) - both
	return float64(both) / float64(union)
}
