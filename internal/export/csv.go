package export

import (
	"bytes"
	"encoding/csv"
	"strings"

	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// csvHeader fixes the column order editors expect: moment data, the six
// persona caption columns, then the cut sheet.
var csvHeader = []string{
	"clip_id",
	"clip_label",
	"timestamps",
	"quote",
	"clip_duration_seconds",
	"viral_trigger",
	"why_it_hits",
	"energy_tag",
	"flags",

	"historian_caption",
	"thomist_caption",
	"ex_protestant_caption",
	"meme_catholic_caption",
	"old_world_catholic_caption",
	"catholic_caption",

	"in_point",
	"out_point",
	"aspect_ratio",
	"crop_note",
	"opening_hook_subtitle",
	"emphasis_words_caps",
	"pacing_note",
	"b_roll_ideas",
	"text_on_screen_idea",
	"silence_handling",
	"thumbnail_text",
	"thumbnail_face_cue",
	"platform_priority",
	"use_persona_caption",
}

// ToCSV renders one row per clip. An empty clip list yields an empty string.
func ToCSV(clips []types.Clip) (string, error) {
	if len(clips) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", errs.NewExport("csv", err)
	}
	for _, c := range clips {
		if err := w.Write(csvRow(c)); err != nil {
			return "", errs.NewExport("csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errs.NewExport("csv", err)
	}
	return buf.String(), nil
}

func csvRow(c types.Clip) []string {
	m := c.Moment
	s := c.CutSheet
	return []string{
		c.ID,
		s.ClipLabel,
		timestamps(c),
		m.Quote,
		durationSeconds(c),
		m.ViralTrigger,
		m.WhyItHits,
		m.EnergyTag,
		strings.Join(m.Flags, "; "),

		m.PersonaCaptions.Historian,
		m.PersonaCaptions.Thomist,
		m.PersonaCaptions.ExProtestant,
		m.PersonaCaptions.MemeCatholic,
		m.PersonaCaptions.OldWorldCatholic,
		m.PersonaCaptions.Catholic,

		s.InPoint,
		s.OutPoint,
		s.AspectRatio,
		s.CropNote,
		s.OpeningHookSubtitle,
		strings.Join(s.EmphasisWordsCaps, "; "),
		s.PacingNote,
		s.BRollIdeas,
		s.TextOnScreenIdea,
		s.SilenceHandling,
		s.ThumbnailText,
		s.ThumbnailFaceCue,
		s.PlatformPriority,
		s.UsePersonaCaption,
	}
}
