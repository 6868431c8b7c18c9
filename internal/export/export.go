// Package export renders a pipeline result into editor-facing formats:
// CSV for spreadsheets, Markdown for review, PDF for printing.
package export

import (
	"fmt"

	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

func timestamps(c types.Clip) string {
	return transcript.FormatRange(c.Moment.Start, c.Moment.End)
}

func durationSeconds(c types.Clip) string {
	return fmt.Sprintf("%.2f", c.Moment.Duration().Seconds())
}
