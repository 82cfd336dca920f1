package models

// ResolutionStats summarises a batch of resolutions.
type ResolutionStats struct {
	Total             int                    `json:"total"`
	Resolved          int                    `json:"resolved"`
	Unresolved        int                    `json:"unresolved"`
	NeedsConfirmation int                    `json:"needs_confirmation"`
	AverageConfidence float64                `json:"average_confidence"`
	SuccessRate       float64                `json:"success_rate"`
	ByTier            map[ConfidenceTier]int `json:"by_tier"`
	ByMethod          map[string]int         `json:"by_method"`
	ByProvider        map[string]int         `json:"by_provider"`
}

// NewResolutionStats tallies rs.
func NewResolutionStats(rs []Resolution) ResolutionStats {
	st := ResolutionStats{
		Total:      len(rs),
		ByTier:     make(map[ConfidenceTier]int),
		ByMethod:   make(map[string]int),
		ByProvider: make(map[string]int),
	}

	var sum float64
	for _, r := range rs {
		if !r.Resolved() {
			st.Unresolved++
			continue
		}
		t := r.Track
		st.Resolved++
		sum += t.Confidence
		st.ByTier[t.Tier]++
		st.ByMethod[t.Method.String()]++
		st.ByProvider[t.Provider]++
		if t.NeedsConfirmation {
			st.NeedsConfirmation++
		}
	}

	if st.Resolved > 0 {
		st.AverageConfidence = sum / float64(st.Resolved)
	}
	if st.Total > 0 {
		st.SuccessRate = float64(st.Resolved) / float64(st.Total)
	}
	return st
}
