package export

import (
	"fmt"
	"strings"

	"github.com/sundaymedia/catholiccuts/internal/types"
)

// personaOrder fixes the caption listing order in Markdown output.
var personaOrder = []struct {
	label string
	pick  func(types.PersonaCaptions) string
}{
	{"Historian", func(p types.PersonaCaptions) string { return p.Historian }},
	{"Thomist", func(p types.PersonaCaptions) string { return p.Thomist }},
	{"Ex-Protestant", func(p types.PersonaCaptions) string { return p.ExProtestant }},
	{"Meme Catholic", func(p types.PersonaCaptions) string { return p.MemeCatholic }},
	{"Old World Catholic", func(p types.PersonaCaptions) string { return p.OldWorldCatholic }},
	{"Catholic", func(p types.PersonaCaptions) string { return p.Catholic }},
}

// ToMarkdown renders a human-readable review document, one section per clip.
func ToMarkdown(clips []types.Clip) string {
	if len(clips) == 0 {
		return "# Viral Clips\n\nNo clips found."
	}

	var b strings.Builder
	b.WriteString("# Viral Clips\n\n")
	fmt.Fprintf(&b, "Generated %d clips for editing.\n\n", len(clips))

	for i, c := range clips {
		writeClipSection(&b, i+1, c)
	}
	return b.String()
}

func writeClipSection(b *strings.Builder, n int, c types.Clip) {
	m := c.Moment
	s := c.CutSheet

	fmt.Fprintf(b, "## Clip %d – %s\n\n", n, s.ClipLabel)

	fmt.Fprintf(b, "- **Timestamps:** %s\n", timestamps(c))
	fmt.Fprintf(b, "- **Duration:** %s seconds\n", durationSeconds(c))
	fmt.Fprintf(b, "- **Trigger:** %s\n", m.ViralTrigger)
	fmt.Fprintf(b, "- **Energy:** %s\n", m.EnergyTag)
	if len(m.Flags) > 0 {
		fmt.Fprintf(b, "- **Flags:** %s\n", strings.Join(m.Flags, ", "))
	}
	b.WriteString("\n")

	if m.Quote != "" {
		b.WriteString("**Quote:**\n")
		fmt.Fprintf(b, "> %s\n\n", m.Quote)
	}
	if m.WhyItHits != "" {
		fmt.Fprintf(b, "**Why it hits:** %s\n\n", m.WhyItHits)
	}

	b.WriteString("**Persona Captions:**\n")
	for _, p := range personaOrder {
		fmt.Fprintf(b, "- %s: %s\n", p.label, p.pick(m.PersonaCaptions))
	}
	b.WriteString("\n")

	b.WriteString("**Editor Cut Sheet:**\n")
	fmt.Fprintf(b, "- **In Point:** %s\n", s.InPoint)
	fmt.Fprintf(b, "- **Out Point:** %s\n", s.OutPoint)
	fmt.Fprintf(b, "- **Aspect Ratio:** %s\n", s.AspectRatio)
	fmt.Fprintf(b, "- **Crop Note:** %s\n", s.CropNote)
	fmt.Fprintf(b, "- **Opening Hook Subtitle:** %s\n", s.OpeningHookSubtitle)
	if len(s.EmphasisWordsCaps) > 0 {
		fmt.Fprintf(b, "- **Emphasis Words (ALL CAPS):** %s\n", strings.Join(s.EmphasisWordsCaps, ", "))
	} else {
		b.WriteString("- **Emphasis Words (ALL CAPS):** None specified\n")
	}
	fmt.Fprintf(b, "- **Pacing Note:** %s\n", s.PacingNote)
	fmt.Fprintf(b, "- **B-Roll Ideas:** %s\n", s.BRollIdeas)
	fmt.Fprintf(b, "- **Text on Screen Idea:** %s\n", s.TextOnScreenIdea)
	fmt.Fprintf(b, "- **Silence Handling:** %s\n", s.SilenceHandling)
	fmt.Fprintf(b, "- **Thumbnail Text:** %s\n", s.ThumbnailText)
	fmt.Fprintf(b, "- **Thumbnail Face Cue:** %s\n", s.ThumbnailFaceCue)
	fmt.Fprintf(b, "- **Platform Priority:** %s\n", s.PlatformPriority)
	fmt.Fprintf(b, "- **Use Persona Caption:** %s\n", s.UsePersonaCaption)

	b.WriteString("\n---\n\n")
}
