package similarity

import (
	"math"

	"github.com/desertthunder/seedmix/internal/models"
)

// Score grades v against profile and returns the score with each feature's weighted contribution.
//
// Continuous features contribute weight x (1 - distance outside the range / window); key and mode
// contribute their full weight when preferred and nothing otherwise. The result is normalized by
// the weight total, so a vector inside every range scores exactly 1.
func Score(profile models.AudioFeatureProfile, v models.AudioFeatureVector, weights FeatureWeights) (float64, map[string]float64) {
	breakdown := make(map[string]float64, 10)
	var score, total float64

	for _, f := range models.ContinuousFeatures() {
		w := weights.Of(f)
		if w == 0 {
			continue
		}
		c := w * (1 - profile.Range(f).Distance(v.Value(f)))
		breakdown[f.String()] = c
		score += c
		total += w
	}

	key := 0.0
	if profile.PrefersKey(v.Key) {
		key = weights.Key
	}
	mode := 0.0
	if profile.PrefersMode(v.Mode) {
		mode = weights.Mode
	}
	breakdown["key"], breakdown["mode"] = key, mode
	score += key + mode
	total += weights.Key + weights.Mode

	if total == 0 {
		return 0, breakdown
	}
	return math.Min(1, math.Max(0, score/total)), breakdown
}
