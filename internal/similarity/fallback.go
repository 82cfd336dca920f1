package similarity

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/desertthunder/seedmix/internal/models"
)

// hint nudges estimated features when a keyword appears in a track's genres or title.
type hint struct {
	keywords []string
	apply    func(v *models.AudioFeatureVector)
}

var hints = []hint{
	{[]string{"acoustic", "folk", "unplugged"}, func(v *models.AudioFeatureVector) {
		v.Acousticness, v.Energy = 0.8, min(v.Energy, 0.4)
	}},
	{[]string{"live"}, func(v *models.AudioFeatureVector) { v.Liveness = 0.8 }},
	{[]string{"remix", "dance", "edm", "house", "disco", "techno"}, func(v *models.AudioFeatureVector) {
		v.Danceability, v.Energy = 0.8, max(v.Energy, 0.75)
	}},
	{[]string{"instrumental", "classical", "ambient", "soundtrack"}, func(v *models.AudioFeatureVector) {
		v.Instrumentalness, v.Speechiness = 0.8, 0.03
	}},
	{[]string{"rap", "hip hop", "hip-hop", "trap"}, func(v *models.AudioFeatureVector) {
		v.Speechiness = 0.3
	}},
	{[]string{"metal", "punk", "rock"}, func(v *models.AudioFeatureVector) {
		v.Energy, v.Acousticness = max(v.Energy, 0.8), min(v.Acousticness, 0.2)
	}},
	{[]string{"ballad", "sad", "lullaby"}, func(v *models.AudioFeatureVector) {
		v.Valence, v.Tempo = min(v.Valence, 0.3), min(v.Tempo, 90)
	}},
}

// Estimate derives a deterministic stand-in feature vector for a track with no audio analysis.
//
// Values are drawn from a generator seeded by the provider and ID, then nudged by genre and title
// keywords. The result is marked Estimated.
func Estimate(c models.CandidateTrack) models.AudioFeatureVector {
	h := fnv.New64a()
	_, _ = h.Write([]byte(c.Provider + ":" + c.ID))
	sum := h.Sum64()
	rng := rand.New(rand.NewPCG(sum, sum>>1|1))

	v := models.AudioFeatureVector{
		Tempo:            80 + rng.Float64()*80,
		Energy:           0.3 + rng.Float64()*0.5,
		Valence:          0.2 + rng.Float64()*0.6,
		Danceability:     0.3 + rng.Float64()*0.5,
		Acousticness:     rng.Float64() * 0.6,
		Instrumentalness: rng.Float64() * 0.2,
		Liveness:         0.05 + rng.Float64()*0.25,
		Speechiness:      0.03 + rng.Float64()*0.12,
		Loudness:         -14 + rng.Float64()*10,
		Key:              rng.IntN(models.KeyCount),
		Mode:             rng.IntN(models.ModeCount),
	}

	words := strings.FieldsFunc(strings.ToLower(c.Title+" "+strings.Join(c.Genres, " ")), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	text := " " + strings.Join(words, " ") + " "
	for _, hn := range hints {
		for _, kw := range hn.keywords {
			if strings.Contains(text, " "+kw+" ") {
				hn.apply(&v)
				break
			}
		}
	}

	v = v.Clamped()
	v.Estimated = true
	return v
}
