// Package chunker splits transcript text into model-call-sized chunks.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

const (
	// MinChars and MaxChars bound the caller-configurable chunk size. The
	// floor leaves room for at least one full moment quote plus context.
	MinChars = 5_000
	MaxChars = 15_000

	// DefaultChars is used when the caller does not set a chunk size.
	DefaultChars = 8_000

	// MaxOverlap bounds the configurable boundary overlap.
	MaxOverlap = 1_000

	// DefaultOverlap repeats a short tail of each chunk at the start of the
	// next one so a moment quoted across a boundary is fully visible to at
	// least one model call.
	DefaultOverlap = 400
)

// Config holds the chunker tunables.
type Config struct {
	// MaxChars is the upper bound on chunk length in bytes.
	MaxChars int

	// OverlapChars is how far each chunk's start reaches back into the
	// previous chunk. Zero disables overlap.
	OverlapChars int
}

// Validate checks bounds and fills defaults in place.
func (c *Config) Validate() error {
	if c.MaxChars == 0 {
		c.MaxChars = DefaultChars
	}
	if c.MaxChars < MinChars || c.MaxChars > MaxChars {
		return errs.NewConfigf("chunk size %d out of range [%d, %d]", c.MaxChars, MinChars, MaxChars)
	}
	if c.OverlapChars < 0 || c.OverlapChars > MaxOverlap {
		return errs.NewConfigf("chunk overlap %d out of range [0, %d]", c.OverlapChars, MaxOverlap)
	}
	return nil
}

// Split cuts text into chunks no longer than cfg.MaxChars. Cuts prefer
// paragraph breaks, then sentence ends, then line breaks, then any
// whitespace, and never land mid-word. Timestamp-range markers contain no
// whitespace, so a marker is never split either. Every non-empty transcript
// yields at least one chunk and the chunks' source ranges cover the
// transcript with no gaps; consecutive ranges overlap by up to
// cfg.OverlapChars when configured.
func Split(text string, cfg Config) ([]types.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.NewEmptyInput()
	}

	n := len(text)
	var chunks []types.Chunk
	pos := 0
	for pos < n {
		end := pos + cfg.MaxChars
		if end >= n {
			end = n
		} else {
			end = cutPoint(text, pos, end)
		}
		chunks = append(chunks, types.Chunk{
			Index: len(chunks),
			Start: pos,
			End:   end,
			Text:  text[pos:end],
		})
		if end >= n {
			break
		}
		pos = nextStart(text, pos, end, cfg.OverlapChars)
	}
	return chunks, nil
}

// cutPoint picks the end offset for a chunk starting at start with a hard
// limit of limit. The second half of the window is searched so chunks stay
// reasonably full.
func cutPoint(text string, start, limit int) int {
	// Never split a multi-byte rune.
	for limit > start && !utf8.RuneStart(text[limit]) {
		limit--
	}
	window := text[start:limit]
	minKeep := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i >= minKeep {
		return start + i + 2
	}
	if i := lastSentenceEnd(window); i >= minKeep {
		return start + i + 1
	}
	if i := strings.LastIndexByte(window, '\n'); i >= minKeep {
		return start + i + 1
	}
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i > 0 {
		return start + i + 1
	}
	// No whitespace at all in the window; forced cut.
	return limit
}

// lastSentenceEnd returns the index of the last terminal punctuation mark in
// s that is followed by whitespace, or -1.
func lastSentenceEnd(s string) int {
	for i := len(s) - 2; i >= 0; i-- {
		c := s[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[i+1:])
		if unicode.IsSpace(next) {
			return i
		}
	}
	return -1
}

// nextStart computes where the following chunk begins: overlap chars back
// from end, then forward to the next word start. Progress past pos is
// guaranteed so chunking always terminates.
func nextStart(text string, pos, end, overlap int) int {
	next := end - overlap
	if next <= pos {
		return end
	}
	if next >= len(text) {
		return end
	}
	// Align to a word start inside the overlap region.
	if r, _ := utf8.DecodeLastRuneInString(text[:next]); !unicode.IsSpace(r) {
		j := strings.IndexFunc(text[next:end], unicode.IsSpace)
		if j < 0 {
			return end
		}
		next += j + 1
	}
	if next <= pos || next > end {
		return end
	}
	return next
}
