// Package embedding builds fixed-dimension artist vectors. Metric vectors
// come from snapshot history; fallback vectors hash name and genre tokens so
// clustering and fit never lack an input.
package embedding

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// Dim is the fixed embedding dimension for every vector in the system.
const Dim = constants.EmbeddingDim

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// BuildMetricVector embeds an artist from its metric snapshots: latest raw
// values plus growth over the observed history, zero-padded to Dim. Returns
// nil when there are no snapshots.
func BuildMetricVector(snapshots []*models.Snapshot) []float64 {
	if len(snapshots) == 0 {
		return nil
	}
	latest := snapshots[len(snapshots)-1]
	features := []float64{
		float64(latest.Followers),
		float64(latest.Views),
		float64(latest.Likes),
		float64(latest.Comments),
		latest.EngagementRate,
	}
	if len(snapshots) >= 2 {
		prev := snapshots[0]
		features = append(features,
			growth(float64(latest.Followers), float64(prev.Followers)),
			growth(float64(latest.Views), float64(prev.Views)),
			growth(float64(latest.Likes), float64(prev.Likes)),
		)
	} else {
		features = append(features, 0, 0, 0)
	}

	vec := make([]float64, Dim)
	copy(vec, features)
	return vec
}

func growth(curr, prev float64) float64 {
	return (curr - prev) / math.Max(prev, 1)
}

// BuildTextVector hashes tokens into a normalized Dim-dimensional vector.
// Deterministic for a given input.
func BuildTextVector(text string) []float64 {
	vec := make([]float64, Dim)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec
	}
	for _, token := range tokens {
		sum := md5.Sum([]byte(token))
		digest := hex.EncodeToString(sum[:])
		idx64, _ := strconv.ParseUint(digest[:8], 16, 64)
		signByte, _ := strconv.ParseUint(digest[8:10], 16, 64)
		sign := 1.0
		if signByte%2 == 1 {
			sign = -1.0
		}
		vec[idx64%Dim] += sign
	}
	return Normalize(vec)
}

// BuildFallbackVector embeds an artist from its name and genre tags.
func BuildFallbackVector(name string, genres []string) []float64 {
	parts := append([]string{name}, genres...)
	return BuildTextVector(strings.Join(parts, " "))
}

// Cosine computes the cosine similarity of two vectors; zero vectors or
// mismatched lengths yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales a vector to unit length; the zero vector is returned as is.
func Normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
