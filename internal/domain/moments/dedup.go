package moments

import (
	"sort"
	"strings"
	"time"

	"github.com/xrash/smetrics"

	"github.com/sundaymedia/catholiccuts/internal/types"
)

// DedupConfig holds the tunables for cross-chunk deduplication.
type DedupConfig struct {
	// SimilarityThreshold is the minimum quote similarity for two moments to
	// count as duplicates.
	SimilarityThreshold float64

	// TimeTolerance is how far apart two timestamp ranges may sit and still
	// count as adjacent. Covers the same moment split across a chunk
	// boundary.
	TimeTolerance time.Duration
}

// DefaultDedupConfig returns the documented defaults.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		SimilarityThreshold: 0.85,
		TimeTolerance:       2 * time.Second,
	}
}

// FillDefaults replaces unset fields with the documented defaults, leaving
// set fields alone.
func (c *DedupConfig) FillDefaults() {
	def := DefaultDedupConfig()
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = def.SimilarityThreshold
	}
	if c.TimeTolerance <= 0 {
		c.TimeTolerance = def.TimeTolerance
	}
}

// Dedup reconciles moments that were reported by more than one chunk. Two
// moments are duplicates when their quotes overlap substantially and their
// timestamp ranges overlap or sit within the tolerance. The survivor of a
// duplicate pair is the one with the longer quote, then the richer persona
// set, then the earlier start; the survivor also absorbs any persona
// captions and suggestions the loser had that it lacks. Output is sorted by
// start timestamp, stable for equal starts.
func Dedup(in []types.Moment, cfg DedupConfig) []types.Moment {
	cfg.FillDefaults()
	if len(in) == 0 {
		return nil
	}

	var kept []types.Moment
	for _, m := range in {
		merged := false
		for i := range kept {
			if !duplicates(kept[i], m, cfg) {
				continue
			}
			kept[i] = merge(kept[i], m)
			merged = true
			break
		}
		if !merged {
			kept = append(kept, m)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})
	return kept
}

func duplicates(a, b types.Moment, cfg DedupConfig) bool {
	if !timesNear(a, b, cfg.TimeTolerance) {
		return false
	}
	return quotesSimilar(a.Quote, b.Quote, cfg.SimilarityThreshold)
}

// timesNear reports whether the two ranges overlap or their gap is within
// the tolerance.
func timesNear(a, b types.Moment, tol time.Duration) bool {
	return a.Start <= b.End+tol && b.Start <= a.End+tol
}

// quotesSimilar combines containment, token overlap, and Jaro-Winkler so
// both near-identical quotes and a short quote swallowed by a longer one are
// caught.
func quotesSimilar(a, b string, threshold float64) bool {
	na := normalizeQuote(a)
	nb := normalizeQuote(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	if tokenOverlap(na, nb) >= threshold {
		return true
	}
	return smetrics.JaroWinkler(na, nb, 0.7, 4) >= threshold
}

func normalizeQuote(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// tokenOverlap is the shared-token count over the smaller token count.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]int, len(ta))
	for _, t := range ta {
		set[t]++
	}
	shared := 0
	for _, t := range tb {
		if set[t] > 0 {
			set[t]--
			shared++
		}
	}
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	return float64(shared) / float64(smaller)
}

func merge(a, b types.Moment) types.Moment {
	winner, loser := a, b
	if pick(b, a) {
		winner, loser = b, a
	}

	// Absorb what the loser knew and the winner did not.
	winner.PersonaCaptions = fillCaptions(winner.PersonaCaptions, loser.PersonaCaptions)
	if winner.BRollIdeas == "" {
		winner.BRollIdeas = loser.BRollIdeas
	}
	if winner.TextOnScreenIdea == "" {
		winner.TextOnScreenIdea = loser.TextOnScreenIdea
	}
	winner.Flags = unionFlags(winner.Flags, loser.Flags)
	return winner
}

// pick reports whether b beats a under the merge policy.
func pick(b, a types.Moment) bool {
	if len(b.Quote) != len(a.Quote) {
		return len(b.Quote) > len(a.Quote)
	}
	if b.PersonaCaptions.Count() != a.PersonaCaptions.Count() {
		return b.PersonaCaptions.Count() > a.PersonaCaptions.Count()
	}
	return b.Start < a.Start
}

func fillCaptions(dst, src types.PersonaCaptions) types.PersonaCaptions {
	if dst.Historian == "" {
		dst.Historian = src.Historian
	}
	if dst.Thomist == "" {
		dst.Thomist = src.Thomist
	}
	if dst.ExProtestant == "" {
		dst.ExProtestant = src.ExProtestant
	}
	if dst.MemeCatholic == "" {
		dst.MemeCatholic = src.MemeCatholic
	}
	if dst.OldWorldCatholic == "" {
		dst.OldWorldCatholic = src.OldWorldCatholic
	}
	if dst.Catholic == "" {
		dst.Catholic = src.Catholic
	}
	return dst
}

func unionFlags(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	out := append([]string(nil), a...)
	for _, f := range a {
		seen[f] = struct{}{}
	}
	for _, f := range b {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
