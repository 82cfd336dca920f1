package similarity

import (
	"cmp"
	"slices"
	"strings"

	"github.com/desertthunder/seedmix/internal/models"
)

// BuildProfile derives the target envelope from resolved seed tracks.
//
// Each continuous range spans the observed values padded by tolerance x the feature's global span
// and clamped to its bounds. Keys and modes are preferred only while the seeds agree on at most
// half of the declared values. Tracks without features use [Estimate].
func BuildProfile(tracks []models.ResolvedTrack, tolerance float64) models.AudioFeatureProfile {
	tolerance = min(max(tolerance, 0), 1)
	profile := models.AudioFeatureProfile{
		Tolerance: tolerance,
		Variance:  make(map[string]float64),
	}
	if len(tracks) == 0 {
		for _, f := range models.ContinuousFeatures() {
			lo, hi := f.Bounds()
			profile.SetRange(f, models.Range{Low: lo, High: hi, Window: tolerance * f.Span()})
		}
		profile.Average = models.NewAudioFeatureVector(midpoints())
		return profile
	}

	vectors := make([]models.AudioFeatureVector, len(tracks))
	for i, t := range tracks {
		if t.Features != nil {
			vectors[i] = t.Features.Clamped()
		} else {
			vectors[i] = Estimate(t.Candidate())
		}
	}

	n := float64(len(vectors))
	for _, f := range models.ContinuousFeatures() {
		lo, hi := vectors[0].Value(f), vectors[0].Value(f)
		var sum float64
		for _, v := range vectors {
			x := v.Value(f)
			lo, hi = min(lo, x), max(hi, x)
			sum += x
		}
		mean := sum / n

		var sq float64
		for _, v := range vectors {
			d := v.Value(f) - mean
			sq += d * d
		}
		profile.Variance[f.String()] = sq / n

		pad := tolerance * f.Span()
		blo, bhi := f.Bounds()
		profile.SetRange(f, models.Range{Low: max(blo, lo-pad), High: min(bhi, hi+pad), Window: pad})
		profile.Average = profile.Average.With(f, mean)
	}

	keys := make(map[int]bool)
	modes := make(map[int]bool)
	for _, v := range vectors {
		keys[v.Key] = true
		modes[v.Mode] = true
	}
	if len(keys) <= models.KeyCount/2 {
		profile.PreferredKeys = sortedInts(keys)
	}
	if len(modes) <= models.ModeCount/2 {
		profile.PreferredModes = sortedInts(modes)
	}
	profile.Average.Key = vectors[0].Key
	profile.Average.Mode = vectors[0].Mode

	genres := make(map[string]int)
	seenArtist := make(map[string]bool)
	for _, t := range tracks {
		profile.SeedIDs = append(profile.SeedIDs, t.ID)
		if a := strings.ToLower(t.Artist); !seenArtist[a] {
			seenArtist[a] = true
			profile.SeedArtists = append(profile.SeedArtists, t.Artist)
		}
		for _, g := range t.Genres {
			genres[strings.ToLower(strings.TrimSpace(g))]++
		}
	}
	delete(genres, "")
	profile.PreferredGenres = rankGenres(genres)
	return profile
}

func midpoints() models.AudioFeatureVector {
	var v models.AudioFeatureVector
	for _, f := range models.ContinuousFeatures() {
		lo, hi := f.Bounds()
		v = v.With(f, (lo+hi)/2)
	}
	return v
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// rankGenres orders genres by seed frequency, then name.
func rankGenres(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for g := range counts {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b string) int {
		return cmp.Or(cmp.Compare(counts[b], counts[a]), cmp.Compare(a, b))
	})
	return out
}
