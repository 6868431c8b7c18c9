// Package cutsheets derives editor cut sheets from validated moments. The
// derivation is pure and deterministic: the same moments and config always
// produce the same IDs and fields.
package cutsheets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// Placeholders used for fields with nothing meaningful to say. Export
// formatters rely on these being literal values, never empty strings.
const (
	PlaceholderNone = "none"
	PlaceholderNA   = "N/A"
)

// Config holds the cut-sheet tunables.
type Config struct {
	// PreRoll and PostRoll pad the raw moment range so the edit does not
	// clip the first or last word.
	PreRoll  time.Duration
	PostRoll time.Duration

	AspectRatio string

	// MaxEmphasisWords caps the emphasis list length.
	MaxEmphasisWords int

	// PowerWords always qualify for emphasis regardless of casing.
	PowerWords []string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		PreRoll:          1500 * time.Millisecond,
		PostRoll:         2 * time.Second,
		AspectRatio:      "9:16",
		MaxEmphasisWords: 6,
		PowerWords:       defaultPowerWords,
	}
}

// FillDefaults replaces unset fields with the documented defaults, leaving
// set fields alone.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.PreRoll <= 0 {
		c.PreRoll = def.PreRoll
	}
	if c.PostRoll <= 0 {
		c.PostRoll = def.PostRoll
	}
	if c.AspectRatio == "" {
		c.AspectRatio = def.AspectRatio
	}
	if c.MaxEmphasisWords <= 0 {
		c.MaxEmphasisWords = def.MaxEmphasisWords
	}
	if c.PowerWords == nil {
		c.PowerWords = def.PowerWords
	}
}

var defaultPowerWords = []string{
	"never", "always", "truth", "lie", "wrong", "secret", "mistake",
	"heresy", "miracle", "sacred", "eternal", "soul", "sin", "grace",
}

// Derive assigns a stable ID and a complete cut sheet to every moment.
// transcriptEnd clamps the padded out point; pass zero when the transcript
// end is unknown and only the lower clamp applies.
func Derive(in []types.Moment, transcriptEnd time.Duration, cfg Config) []types.Clip {
	cfg.FillDefaults()

	out := make([]types.Clip, 0, len(in))
	for _, m := range in {
		out = append(out, types.Clip{
			ID:       momentID(m),
			Moment:   m,
			CutSheet: sheet(m, transcriptEnd, cfg),
		})
	}
	return out
}

// momentID is a content hash of quote and start time, so re-running the
// pipeline on identical input yields identical IDs.
func momentID(m types.Moment) string {
	seed := fmt.Sprintf("%s|%d", m.Quote, m.Start)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:12]
}

func sheet(m types.Moment, transcriptEnd time.Duration, cfg Config) types.CutSheet {
	in := m.Start - cfg.PreRoll
	if in < 0 {
		in = 0
	}
	out := m.End + cfg.PostRoll
	if transcriptEnd > 0 && out > transcriptEnd {
		out = transcriptEnd
	}
	if out <= in {
		out = in + time.Second
	}

	emphasis := emphasisWords(m.Quote, cfg)

	return types.CutSheet{
		ClipLabel:           clipLabel(m),
		InPoint:             transcript.FormatTimestamp(in),
		OutPoint:            transcript.FormatTimestamp(out),
		AspectRatio:         cfg.AspectRatio,
		CropNote:            "center speaker, leave headroom for captions",
		OpeningHookSubtitle: openingHook(m.Quote),
		EmphasisWordsCaps:   emphasis,
		PacingNote:          pacingNote(m.EnergyTag),
		BRollIdeas:          orPlaceholder(m.BRollIdeas, PlaceholderNone),
		TextOnScreenIdea:    orPlaceholder(m.TextOnScreenIdea, PlaceholderNone),
		SilenceHandling:     "trim pauses longer than 0.75s",
		ThumbnailText:       thumbnailText(m.Quote, emphasis),
		ThumbnailFaceCue:    faceCue(m.EnergyTag),
		PlatformPriority:    platformPriority(m.ViralTrigger),
		UsePersonaCaption:   personaKey(m.PersonaCaptions),
	}
}

// clipLabel slugs the quote's leading words and appends the trigger tag.
func clipLabel(m types.Moment) string {
	words := strings.Fields(m.Quote)
	if len(words) > 4 {
		words = words[:4]
	}
	parts := make([]string, 0, len(words)+1)
	for _, w := range words {
		if s := slugWord(w); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, strings.ToUpper(m.ViralTrigger))
	return strings.Join(parts, "_")
}

func slugWord(w string) string {
	var b strings.Builder
	for _, r := range w {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// openingHook is the quote's first sentence, truncated to subtitle length.
func openingHook(quote string) string {
	s := strings.TrimSpace(quote)
	if s == "" {
		return PlaceholderNA
	}
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		s = s[:i+1]
	}
	const maxHook = 72
	r := []rune(s)
	if len(r) > maxHook {
		s = strings.TrimSpace(string(r[:maxHook])) + "…"
	}
	return s
}

// emphasisWords selects up to cfg.MaxEmphasisWords from the quote: words the
// speaker already shouted (all caps), capitalized words past a sentence
// start, and power-list words. Order follows the quote; output is
// uppercased and deduplicated.
func emphasisWords(quote string, cfg Config) []string {
	power := make(map[string]struct{}, len(cfg.PowerWords))
	for _, w := range cfg.PowerWords {
		power[strings.ToLower(w)] = struct{}{}
	}

	max := cfg.MaxEmphasisWords
	if max <= 0 {
		max = 6
	}

	out := []string{}
	seen := map[string]struct{}{}
	sentenceStart := true
	for _, tok := range strings.Fields(quote) {
		word := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		startsSentence := sentenceStart
		sentenceStart = strings.ContainsAny(tok, ".!?")
		if len([]rune(word)) < 3 {
			continue
		}

		_, isPower := power[strings.ToLower(word)]
		if !isPower && !isAllUpper(word) && (startsSentence || !isCapitalized(word)) {
			continue
		}

		up := strings.ToUpper(word)
		if _, dup := seen[up]; dup {
			continue
		}
		seen[up] = struct{}{}
		out = append(out, up)
		if len(out) >= max {
			break
		}
	}
	return out
}

func isAllUpper(w string) bool {
	hasLetter := false
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return hasLetter
}

func isCapitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func pacingNote(energy string) string {
	switch strings.ToLower(energy) {
	case "fiery", "intense":
		return "fast cuts, ride the energy, no dead air"
	case "solemn", "reverent":
		return "slow cuts, let lines breathe"
	case "playful":
		return "snappy cuts, lean into the laughs"
	default:
		return "steady pace, cut on breaths"
	}
}

func faceCue(energy string) string {
	switch strings.ToLower(energy) {
	case "fiery", "intense":
		return "mid-gesture, eyes wide"
	case "solemn", "reverent":
		return "eyes closed or downcast"
	default:
		return "direct gaze at lens"
	}
}

func platformPriority(trigger string) string {
	switch trigger {
	case "controversy":
		return "X, TikTok"
	case "humor", "absurdity":
		return "TikTok, Reels, Shorts"
	case "insight", "conviction", "testimony":
		return "Reels, Shorts"
	default:
		return "All"
	}
}

// personaKey picks the default caption persona: the first non-empty in a
// fixed priority order, falling back to the broadest key.
func personaKey(p types.PersonaCaptions) string {
	ordered := []struct {
		key string
		val string
	}{
		{"catholic", p.Catholic},
		{"meme_catholic", p.MemeCatholic},
		{"historian", p.Historian},
		{"thomist", p.Thomist},
		{"ex_protestant", p.ExProtestant},
		{"old_world_catholic", p.OldWorldCatholic},
	}
	for _, o := range ordered {
		if o.val != "" {
			return o.key
		}
	}
	return "catholic"
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
