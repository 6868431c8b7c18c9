// Package pipeline wires adapters to the core use case and handles run
// input/output: transcript acquisition, export files, the run manifest.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/export"
	"github.com/sundaymedia/catholiccuts/internal/logger"
	"github.com/sundaymedia/catholiccuts/internal/ports"
	"github.com/sundaymedia/catholiccuts/internal/ports/adapters/apify"
	"github.com/sundaymedia/catholiccuts/internal/ports/adapters/openaillm"
	"github.com/sundaymedia/catholiccuts/internal/ports/adapters/sqlitecache"
	"github.com/sundaymedia/catholiccuts/internal/ports/adapters/whisperapi"
	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
	"github.com/sundaymedia/catholiccuts/internal/usecase"
)

type Config struct {
	// Source is a YouTube URL, a local media file to transcribe, or a local
	// transcript text file.
	Source   string
	Language string
	Title    string

	OutDir string

	// CacheDir holds the extraction cache database. Empty defaults to
	// ".cache"; NoCache disables caching entirely.
	CacheDir string
	NoCache  bool

	ChunkMaxChars      int
	ChunkOverlapChars  int
	MaxMomentsPerChunk int
	Workers            int

	OpenAIAPIKey string
	Model        string

	ApifyToken   string
	ApifyActorID string
	ApifyBaseURL string

	Log logger.Logger
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errs.NewConfig("source is empty")
	}
	if c.OpenAIAPIKey == "" {
		return errs.NewConfig("OpenAI API key is required")
	}
	if isURL(c.Source) {
		if c.ApifyToken == "" {
			return errs.NewConfig("Apify token is required for URL sources")
		}
		if c.ApifyActorID == "" {
			return errs.NewConfig("Apify actor ID is required for URL sources")
		}
		if _, err := apify.NormalizeYouTubeURL(c.Source); err != nil {
			return errs.NewConfigf("source: %v", err)
		}
	} else if _, err := os.Stat(c.Source); err != nil {
		return errs.NewConfigf("stat source: %v", err)
	}

	ucCfg := usecase.Config{
		ChunkMaxChars:      c.ChunkMaxChars,
		ChunkOverlapChars:  c.ChunkOverlapChars,
		MaxMomentsPerChunk: c.MaxMomentsPerChunk,
		Workers:            c.Workers,
	}
	return ucCfg.Validate()
}

// Run acquires the transcript, runs the extraction use case and writes the
// export files into a fresh run directory under cfg.OutDir.
func Run(ctx context.Context, cfg Config) (types.Result, error) {
	if err := cfg.Validate(); err != nil {
		return types.Result{}, err
	}
	log := cfg.Log

	text, in, err := resolveTranscript(ctx, cfg)
	if err != nil {
		return types.Result{}, err
	}
	in.TranscriptText = text
	if cfg.Title != "" {
		in.Title = cfg.Title
	}
	log.Info().Str("source_type", in.SourceType).Int("chars", len(text)).Msg("transcript ready")

	deps := usecase.Deps{
		Backend: openaillm.New(cfg.OpenAIAPIKey, cfg.Model),
		Log:     log,
	}
	if !cfg.NoCache {
		cacheDir := cfg.CacheDir
		if cacheDir == "" {
			cacheDir = ".cache"
		}
		cache, err := sqlitecache.Open(cacheDir)
		if err != nil {
			return types.Result{}, err
		}
		defer cache.Close()
		deps.Cache = cache
	}

	res, err := usecase.New(deps).Run(ctx, in, usecase.Config{
		ChunkMaxChars:      cfg.ChunkMaxChars,
		ChunkOverlapChars:  cfg.ChunkOverlapChars,
		MaxMomentsPerChunk: cfg.MaxMomentsPerChunk,
		Workers:            cfg.Workers,
	})
	if err != nil {
		return types.Result{}, err
	}

	runDir, err := writeOutputs(res, cfg)
	if err != nil {
		return res, err
	}
	log.Info().Str("dir", runDir).Int("clips", len(res.Clips)).Msg(export.Summary(res.Clips))
	return res, nil
}

// resolveTranscript turns the configured source into transcript text plus
// run input metadata. URL sources go through the transcript API, media files
// through hosted speech-to-text, anything else is read as transcript text.
func resolveTranscript(ctx context.Context, cfg Config) (string, usecase.Input, error) {
	if isURL(cfg.Source) {
		fetcher := apify.New(cfg.ApifyToken, cfg.ApifyActorID, cfg.ApifyBaseURL)
		lang := cfg.Language
		if lang == "" {
			lang = "en"
		}
		text, meta, err := fetcher.Fetch(ctx, cfg.Source, lang)
		if err != nil {
			return "", usecase.Input{}, err
		}
		return text, usecase.Input{
			SourceID:   meta.VideoID,
			Title:      meta.Title,
			SourceType: "youtube",
		}, nil
	}

	ext := strings.ToLower(filepath.Ext(cfg.Source))
	if isMediaExt(ext) {
		f, err := os.Open(cfg.Source)
		if err != nil {
			return "", usecase.Input{}, errs.NewTranscriptSource("open media file", err)
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil {
			return "", usecase.Input{}, errs.NewTranscriptSource("stat media file", err)
		}
		text, err := whisperapi.New(cfg.OpenAIAPIKey).Transcribe(ctx, f, filepath.Base(cfg.Source), st.Size())
		if err != nil {
			return "", usecase.Input{}, err
		}
		return text, usecase.Input{
			SourceID:   filepath.Base(cfg.Source),
			SourceType: "upload",
		}, nil
	}

	b, err := os.ReadFile(cfg.Source)
	if err != nil {
		return "", usecase.Input{}, errs.NewTranscriptSource("read transcript file", err)
	}
	return string(b), usecase.Input{
		SourceID:   filepath.Base(cfg.Source),
		SourceType: "manual",
	}, nil
}

// writeOutputs writes clips.csv, clips.md, cutsheets.pdf and manifest.json
// into a per-run directory and returns its path.
func writeOutputs(res types.Result, cfg Config) (string, error) {
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runDir := buildRunOutDir(outDir, res.Metadata.SourceID, res.Metadata.RunID, time.Now().UTC())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	csvDoc, err := export.ToCSV(res.Clips)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "clips.csv"), []byte(csvDoc), 0o644); err != nil {
		return "", errs.NewExport("csv", err)
	}

	md := export.ToMarkdown(res.Clips)
	if err := os.WriteFile(filepath.Join(runDir, "clips.md"), []byte(md), 0o644); err != nil {
		return "", errs.NewExport("markdown", err)
	}

	page, err := export.ToHTML(res.Clips, res.Metadata)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "clips.html"), []byte(page), 0o644); err != nil {
		return "", errs.NewExport("html", err)
	}

	pdfFile, err := os.Create(filepath.Join(runDir, "cutsheets.pdf"))
	if err != nil {
		return "", errs.NewExport("pdf", err)
	}
	if err := export.ToPDF(res.Clips, res.Metadata, pdfFile); err != nil {
		pdfFile.Close()
		return "", err
	}
	if err := pdfFile.Close(); err != nil {
		return "", errs.NewExport("pdf", err)
	}

	b, err := json.MarshalIndent(buildManifest(res), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "manifest.json"), b, 0o644); err != nil {
		return "", errs.NewExport("manifest", err)
	}
	return runDir, nil
}

type manifest struct {
	Metadata       types.Metadata `json:"metadata"`
	ClipCount      int            `json:"clip_count"`
	DroppedRecords int            `json:"dropped_records"`
	FailedChunks   int            `json:"failed_chunks"`
	Clips          []manifestClip `json:"clips"`
}

type manifestClip struct {
	ID              string                `json:"id"`
	Quote           string                `json:"quote"`
	Timestamps      string                `json:"timestamps"`
	DurationSeconds float64               `json:"clip_duration_seconds"`
	ViralTrigger    string                `json:"viral_trigger"`
	EnergyTag       string                `json:"energy_tag"`
	WhyItHits       string                `json:"why_it_hits"`
	Flags           []string              `json:"flags"`
	PersonaCaptions types.PersonaCaptions `json:"persona_captions"`
	CutSheet        types.CutSheet        `json:"editor_cut_sheet"`
}

func buildManifest(res types.Result) manifest {
	clips := make([]manifestClip, 0, len(res.Clips))
	for _, c := range res.Clips {
		clips = append(clips, manifestClip{
			ID:              c.ID,
			Quote:           c.Moment.Quote,
			Timestamps:      transcript.FormatRange(c.Moment.Start, c.Moment.End),
			DurationSeconds: c.Moment.Duration().Seconds(),
			ViralTrigger:    c.Moment.ViralTrigger,
			EnergyTag:       c.Moment.EnergyTag,
			WhyItHits:       c.Moment.WhyItHits,
			Flags:           c.Moment.Flags,
			PersonaCaptions: c.Moment.PersonaCaptions,
			CutSheet:        c.CutSheet,
		})
	}
	return manifest{
		Metadata:       res.Metadata,
		ClipCount:      len(res.Clips),
		DroppedRecords: res.DroppedRecords,
		FailedChunks:   res.FailedChunks,
		Clips:          clips,
	}
}

func buildRunOutDir(outRoot, sourceID, runID string, now time.Time) string {
	name := normalizePathSegment(strings.TrimSuffix(sourceID, filepath.Ext(sourceID)))
	if name == "" {
		name = "run"
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := strings.ToLower(runID)
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isMediaExt(ext string) bool {
	for _, e := range whisperapi.SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ensure adapters implement ports
var _ ports.ModelBackend = (*openaillm.Adapter)(nil)
var _ ports.ExtractionCache = (*sqlitecache.Cache)(nil)
var _ ports.Transcriber = (*whisperapi.Adapter)(nil)
var _ ports.TranscriptFetcher = (*apify.Adapter)(nil)
