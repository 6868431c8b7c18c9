// Package moments validates, repairs, and deduplicates moment records
// returned by the model backend. Everything here is pure and deterministic.
package moments

import (
	"strings"
	"time"
	"unicode"

	"github.com/xrash/smetrics"

	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// ValidateConfig holds the tunables for record validation.
type ValidateConfig struct {
	// FuzzyMatchThreshold is the minimum Jaro-Winkler similarity for
	// relocating a quote that is not a verbatim substring of its chunk.
	FuzzyMatchThreshold float64

	// TimeTolerance is the slack allowed when checking that a moment's
	// timestamps fall inside the chunk's marker range.
	TimeTolerance time.Duration
}

// DefaultValidateConfig returns the documented defaults.
func DefaultValidateConfig() ValidateConfig {
	return ValidateConfig{
		FuzzyMatchThreshold: 0.90,
		TimeTolerance:       2 * time.Second,
	}
}

// FillDefaults replaces unset fields with the documented defaults, leaving
// set fields alone.
func (c *ValidateConfig) FillDefaults() {
	def := DefaultValidateConfig()
	if c.FuzzyMatchThreshold <= 0 {
		c.FuzzyMatchThreshold = def.FuzzyMatchThreshold
	}
	if c.TimeTolerance <= 0 {
		c.TimeTolerance = def.TimeTolerance
	}
}

// Outcome is the result of validating one record: either a usable moment or
// a drop with a reason. Dropped records never abort a batch.
type Outcome struct {
	Moment types.Moment
	Drop   string
}

// Valid reports whether the outcome carries a usable moment.
func (o Outcome) Valid() bool { return o.Drop == "" }

var allowedTriggers = map[string]struct{}{
	"controversy": {},
	"humor":       {},
	"insight":     {},
	"conviction":  {},
	"testimony":   {},
	"absurdity":   {},
}

// Validate checks one record against its source chunk, repairing what it can.
// The returned outcome is a drop when the record cannot be made to satisfy
// the data-model invariants.
func Validate(rec Record, chunk types.Chunk, cfg ValidateConfig) Outcome {
	cfg.FillDefaults()

	quote := strings.TrimSpace(rec.Quote)
	if quote == "" {
		return Outcome{Drop: "empty quote"}
	}

	start := rec.StartSec.Duration()
	end := rec.EndSec.Duration()
	if start < 0 || end <= start {
		return Outcome{Drop: "invalid timestamps"}
	}

	// The chunk's own marker range bounds plausible timestamps. Chunks
	// without markers skip this check.
	if spans := transcript.Spans(chunk.Text); len(spans) > 0 {
		lo := spans[0].Start - cfg.TimeTolerance
		hi := spans[len(spans)-1].End + cfg.TimeTolerance
		if end < lo || start > hi {
			return Outcome{Drop: "timestamps outside chunk range"}
		}
	}

	trigger := strings.ToLower(strings.TrimSpace(rec.ViralTrigger))
	if _, ok := allowedTriggers[trigger]; !ok {
		return Outcome{Drop: "unknown viral trigger " + strings.TrimSpace(rec.ViralTrigger)}
	}

	if !strings.Contains(chunk.Text, quote) {
		relocated, ok := relocateQuote(quote, chunk.Text, cfg.FuzzyMatchThreshold)
		if !ok {
			return Outcome{Drop: "quote not found in chunk"}
		}
		quote = relocated
	}

	flags := rec.Flags
	if flags == nil {
		flags = []string{}
	}

	return Outcome{Moment: types.Moment{
		Quote:            quote,
		Start:            start,
		End:              end,
		ViralTrigger:     trigger,
		EnergyTag:        strings.TrimSpace(rec.EnergyTag),
		WhyItHits:        strings.TrimSpace(rec.WhyItHits),
		Flags:            flags,
		PersonaCaptions:  rec.PersonaCaptions,
		BRollIdeas:       strings.TrimSpace(rec.BRollIdeas),
		TextOnScreenIdea: strings.TrimSpace(rec.TextOnScreenIdea),
	}}
}

// ValidateAll runs Validate over a full batch of records.
func ValidateAll(recs []Record, chunk types.Chunk, cfg ValidateConfig) []Outcome {
	out := make([]Outcome, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Validate(rec, chunk, cfg))
	}
	return out
}

// relocateQuote slides a quote-sized window across the chunk, starting at
// each word boundary, and returns the most similar window when it clears the
// threshold. The returned text is verbatim chunk text, so the substring
// invariant holds after relocation.
func relocateQuote(quote, chunkText string, threshold float64) (string, bool) {
	qlen := len(quote)
	if qlen == 0 || qlen > len(chunkText) {
		return "", false
	}

	best := ""
	bestScore := 0.0
	for _, start := range wordStarts(chunkText) {
		end := start + qlen
		if end > len(chunkText) {
			break
		}
		window := chunkText[start:end]
		score := smetrics.JaroWinkler(quote, window, 0.7, 4)
		if score > bestScore {
			bestScore = score
			best = window
		}
	}
	if bestScore < threshold {
		return "", false
	}
	return strings.TrimSpace(best), true
}

// wordStarts returns the byte offset of every word start in s, including 0
// when s does not begin with whitespace.
func wordStarts(s string) []int {
	var out []int
	inSpace := true
	for i, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			out = append(out, i)
			inSpace = false
		}
	}
	return out
}
