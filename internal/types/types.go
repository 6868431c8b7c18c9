package types

import "time"

// Chunk is a contiguous slice of transcript text sized for a single model
// call. Start and End are byte offsets into the source transcript; Text is
// transcript[Start:End]. Chunks may overlap at boundaries when the chunker is
// configured with an overlap.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// PersonaCaptions holds one short caption per fixed audience persona. Fields
// may be empty when the model does not supply a caption for a persona.
type PersonaCaptions struct {
	Historian        string `json:"historian"`
	Thomist          string `json:"thomist"`
	ExProtestant     string `json:"ex_protestant"`
	MemeCatholic     string `json:"meme_catholic"`
	OldWorldCatholic string `json:"old_world_catholic"`
	Catholic         string `json:"catholic"`
}

// Count returns the number of non-empty captions.
func (p PersonaCaptions) Count() int {
	n := 0
	for _, c := range []string{
		p.Historian, p.Thomist, p.ExProtestant,
		p.MemeCatholic, p.OldWorldCatholic, p.Catholic,
	} {
		if c != "" {
			n++
		}
	}
	return n
}

// Moment is a raw candidate viral moment returned by the model for one chunk.
// Quote is a verbatim substring of the source transcript, Start < End within
// the transcript timeline.
type Moment struct {
	Quote           string
	Start           time.Duration
	End             time.Duration
	ViralTrigger    string
	EnergyTag       string
	WhyItHits       string
	Flags           []string
	PersonaCaptions PersonaCaptions

	// Optional model-supplied editing suggestions; the cut-sheet deriver
	// substitutes placeholders when empty.
	BRollIdeas       string
	TextOnScreenIdea string
}

// Duration returns the moment's span on the timeline.
func (m Moment) Duration() time.Duration { return m.End - m.Start }

// CutSheet carries the deterministic editing instructions derived for one
// moment. Every field is always populated; fields without a meaningful value
// carry an explicit "none" or "N/A" placeholder.
type CutSheet struct {
	ClipLabel           string   `json:"clip_label"`
	InPoint             string   `json:"in_point"`
	OutPoint            string   `json:"out_point"`
	AspectRatio         string   `json:"aspect_ratio"`
	CropNote            string   `json:"crop_note"`
	OpeningHookSubtitle string   `json:"opening_hook_subtitle"`
	EmphasisWordsCaps   []string `json:"emphasis_words_caps"`
	PacingNote          string   `json:"pacing_note"`
	BRollIdeas          string   `json:"b_roll_ideas"`
	TextOnScreenIdea    string   `json:"text_on_screen_idea"`
	SilenceHandling     string   `json:"silence_handling"`
	ThumbnailText       string   `json:"thumbnail_text"`
	ThumbnailFaceCue    string   `json:"thumbnail_face_cue"`
	PlatformPriority    string   `json:"platform_priority"`
	UsePersonaCaption   string   `json:"use_persona_caption"`
}

// Clip is a final moment: the raw moment plus a stable content-derived ID and
// its editor cut sheet. Immutable once produced.
type Clip struct {
	ID       string
	Moment   Moment
	CutSheet CutSheet
}

// Metadata describes one pipeline run.
type Metadata struct {
	RunID      string `json:"run_id"`
	SourceID   string `json:"source_id"`
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
}

// Result is the ordered final clip list plus run metadata. DroppedRecords
// counts moment records discarded during validation; it is informational and
// does not indicate failure.
type Result struct {
	Clips          []Clip
	Metadata       Metadata
	DroppedRecords int
	FailedChunks   int
}

// VideoMeta is source video metadata reported by a transcript fetcher.
type VideoMeta struct {
	Title           string `json:"title"`
	ChannelName     string `json:"channel_name"`
	VideoID         string `json:"video_id"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds"`
	Language        string `json:"language"`
	ViewCount       int64  `json:"view_count"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
}
