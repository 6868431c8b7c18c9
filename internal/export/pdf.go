package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// ToPDF renders a printable cut-sheet document, one page per clip.
func ToPDF(clips []types.Clip, meta types.Metadata, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(meta.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Run %s · %d clips", meta.RunID, len(clips))), "", 1, "L", false, 0, "")

	if len(clips) == 0 {
		pdf.Ln(4)
		pdf.CellFormat(0, 6, "No clips found.", "", 1, "L", false, 0, "")
		return output(pdf, w)
	}

	for i, c := range clips {
		pdf.AddPage()
		writeClipPage(pdf, tr, i+1, c)
	}
	return output(pdf, w)
}

func writeClipPage(pdf *fpdf.Fpdf, tr func(string) string, n int, c types.Clip) {
	m := c.Moment
	s := c.CutSheet

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Clip %d – %s", n, s.ClipLabel)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s · %s s · %s / %s", timestamps(c), durationSeconds(c), m.ViralTrigger, m.EnergyTag)), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, tr(`"`+m.Quote+`"`), "", "L", false)
	pdf.Ln(2)

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(value), "", "L", false)
	}

	field("Why it hits", m.WhyItHits)
	if len(m.Flags) > 0 {
		field("Flags", strings.Join(m.Flags, ", "))
	}
	field("In point", s.InPoint)
	field("Out point", s.OutPoint)
	field("Aspect ratio", s.AspectRatio)
	field("Crop note", s.CropNote)
	field("Opening hook", s.OpeningHookSubtitle)
	field("Emphasis words", strings.Join(s.EmphasisWordsCaps, ", "))
	field("Pacing note", s.PacingNote)
	field("B-roll ideas", s.BRollIdeas)
	field("Text on screen", s.TextOnScreenIdea)
	field("Silence handling", s.SilenceHandling)
	field("Thumbnail text", s.ThumbnailText)
	field("Thumbnail face cue", s.ThumbnailFaceCue)
	field("Platform priority", s.PlatformPriority)
	field("Persona caption", s.UsePersonaCaption)
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return errs.NewExport("pdf", err)
	}
	return nil
}
