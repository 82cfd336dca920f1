package formatter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/seedmix/internal/matcher"
	"github.com/desertthunder/seedmix/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Tier styles a confidence tier label.
func (p *Palette) Tier(tier models.ConfidenceTier) string {
	label := strings.ToUpper(string(tier))
	switch tier {
	case models.TierHigh:
		return p.ok.Render(label)
	case models.TierMedium:
		return p.warn.Render(label)
	case models.TierLow:
		return p.warn.Bold(true).Render(label)
	default:
		return p.err.Render(label)
	}
}

// ResolutionReport renders one line per seed followed by batch statistics.
func ResolutionReport(rs []models.Resolution, stats models.ResolutionStats) string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Seed Resolution"))
	b.WriteString("\n")

	for i, r := range rs {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, r.Seed)
		if !r.Resolved() {
			b.WriteString("     " + styles.err.Render("✗ "+unresolvedReason(r.Err)) + "\n")
			continue
		}

		t := r.Track
		fmt.Fprintf(&b, "     %s %s - %s %s\n",
			styles.ok.Render("✓"), t.Title, t.Artist,
			styles.help.Render(fmt.Sprintf("(%s, %s, %.2f)", t.Provider, t.Method, t.Confidence)),
		)
		fmt.Fprintf(&b, "     %s", styles.Tier(t.Tier))
		if t.NeedsConfirmation {
			b.WriteString(" " + styles.warn.Render("needs confirmation"))
		}
		b.WriteString("\n")
		for _, alt := range t.Alternatives {
			b.WriteString(styles.help.Render(fmt.Sprintf("       alt: %s (%.2f)", alt.Candidate, alt.Score)) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(StatsReport(stats))
	return b.String()
}

// StatsReport renders the totals and per-tier, per-method and per-provider breakdowns.
func StatsReport(stats models.ResolutionStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resolved %d/%d (%.0f%%), average confidence %.2f\n",
		stats.Resolved, stats.Total, stats.SuccessRate*100, stats.AverageConfidence)
	if stats.NeedsConfirmation > 0 {
		b.WriteString(styles.warn.Render(fmt.Sprintf("%d need confirmation", stats.NeedsConfirmation)) + "\n")
	}
	if stats.Unresolved > 0 {
		b.WriteString(styles.err.Render(fmt.Sprintf("%d unresolved", stats.Unresolved)) + "\n")
	}

	var tiers []string
	for _, tier := range []models.ConfidenceTier{models.TierHigh, models.TierMedium, models.TierLow, models.TierNone} {
		if n := stats.ByTier[tier]; n > 0 {
			tiers = append(tiers, fmt.Sprintf("%s %d", styles.Tier(tier), n))
		}
	}
	if len(tiers) > 0 {
		b.WriteString("Tiers: " + strings.Join(tiers, ", ") + "\n")
	}
	if line := countsLine(stats.ByMethod); line != "" {
		b.WriteString("Methods: " + line + "\n")
	}
	if line := countsLine(stats.ByProvider); line != "" {
		b.WriteString("Providers: " + line + "\n")
	}
	return b.String()
}

// PlaylistSummary renders a short human-readable view of a generated playlist.
func PlaylistSummary(pl *models.Playlist) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(pl.Name))
	b.WriteString("\n")
	if pl.Description != "" {
		b.WriteString(styles.help.Render(pl.Description) + "\n\n")
	}

	for _, t := range pl.Tracks {
		line := fmt.Sprintf("%3d. %s - %s", t.Position, t.Artist, t.Title)
		if t.Seed {
			line += " " + styles.help.Render("(seed)")
		}
		fmt.Fprintf(&b, "%s %s\n", line, styles.help.Render(fmt.Sprintf("[%.2f %s]", t.Similarity, t.Era)))
	}

	b.WriteString("\n")
	m := pl.Metadata
	if m.Degraded {
		b.WriteString(styles.err.Render("Every provider failed; the playlist contains seeds only") + "\n")
	}
	if m.Short {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Only %d of %d requested tracks found", pl.Len(), m.RequestedLength)) + "\n")
	}
	fmt.Fprintf(&b, "%d tracks from %d candidates in %s\n", pl.Len(), m.PoolSize, m.Elapsed.Round(time.Millisecond))
	return b.String()
}

func unresolvedReason(err error) string {
	var ue *matcher.UnresolvedError
	if !errors.As(err, &ue) {
		if err == nil {
			return "unresolved"
		}
		return err.Error()
	}
	if ue.Best != nil {
		return fmt.Sprintf("%s (best: %s, %.2f)", ue.Reason, ue.Best.Candidate, ue.Score)
	}
	return string(ue.Reason)
}

func countsLine(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
