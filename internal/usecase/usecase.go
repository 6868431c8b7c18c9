// Package usecase sequences the core pipeline: chunk, extract, validate,
// deduplicate, derive cut sheets.
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sundaymedia/catholiccuts/internal/domain/chunker"
	"github.com/sundaymedia/catholiccuts/internal/domain/cutsheets"
	"github.com/sundaymedia/catholiccuts/internal/domain/moments"
	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/logger"
	"github.com/sundaymedia/catholiccuts/internal/ports"
	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

const (
	// MaxMomentsFloor/Ceil bound the caller-configurable per-chunk moment
	// budget.
	MaxMomentsFloor = 1
	MaxMomentsCeil  = 10

	defaultMaxMoments = 5

	maxWorkers = 8

	// dropWarnRate is the per-chunk validation drop rate above which a
	// warning is logged. Drops themselves never fail the run.
	dropWarnRate = 0.5
)

// Deps are the external collaborators the orchestrator needs. Cache is
// optional; a nil cache disables caching.
type Deps struct {
	Backend ports.ModelBackend
	Cache   ports.ExtractionCache
	Log     logger.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

// Config carries every pipeline tunable; zero values mean defaults.
type Config struct {
	ChunkMaxChars      int
	ChunkOverlapChars  int
	MaxMomentsPerChunk int

	// Workers caps concurrent chunk extraction calls. 1 keeps the run
	// strictly sequential.
	Workers int

	// ConfigVersion participates in cache keys so tuning changes invalidate
	// cached extractions.
	ConfigVersion string

	Validation moments.ValidateConfig
	Dedup      moments.DedupConfig
	CutSheet   cutsheets.Config
}

// Validate checks bounds and fills defaults in place.
func (c *Config) Validate() error {
	chunkCfg := chunker.Config{MaxChars: c.ChunkMaxChars, OverlapChars: c.ChunkOverlapChars}
	if err := chunkCfg.Validate(); err != nil {
		return err
	}
	c.ChunkMaxChars = chunkCfg.MaxChars
	c.ChunkOverlapChars = chunkCfg.OverlapChars

	if c.MaxMomentsPerChunk == 0 {
		c.MaxMomentsPerChunk = defaultMaxMoments
	}
	if c.MaxMomentsPerChunk < MaxMomentsFloor || c.MaxMomentsPerChunk > MaxMomentsCeil {
		return errs.NewConfigf("max moments per chunk %d out of range [%d, %d]",
			c.MaxMomentsPerChunk, MaxMomentsFloor, MaxMomentsCeil)
	}

	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		return errs.NewConfigf("workers %d out of range [1, %d]", c.Workers, maxWorkers)
	}

	if c.ConfigVersion == "" {
		c.ConfigVersion = "v1"
	}
	c.Validation.FillDefaults()
	c.Dedup.FillDefaults()
	c.CutSheet.FillDefaults()
	return nil
}

// Input identifies one transcript to process.
type Input struct {
	TranscriptText string
	SourceID       string
	Title          string
	SourceType     string
}

// Run executes the full pipeline. Zero surviving moments is a successful
// empty result; an error is returned only for invalid input/config or when
// the model backend failed for every chunk.
func (u Usecase) Run(ctx context.Context, in Input, cfg Config) (types.Result, error) {
	if strings.TrimSpace(in.TranscriptText) == "" {
		return types.Result{}, errs.NewEmptyInput()
	}
	if err := cfg.Validate(); err != nil {
		return types.Result{}, err
	}

	raw, dropped, failed, total, err := u.extract(ctx, in.TranscriptText, cfg)
	if err != nil {
		return types.Result{}, err
	}
	if failed > 0 && failed == total {
		return types.Result{}, errs.NewExtraction(total, nil)
	}

	deduped := moments.Dedup(raw, cfg.Dedup)

	end, _ := transcript.End(in.TranscriptText)
	clips := cutsheets.Derive(deduped, end, cfg.CutSheet)

	if len(clips) == 0 {
		u.d.Log.Info().Str("source", in.SourceID).Msg("no viral moments survived the pipeline")
	}

	return types.Result{
		Clips:          clips,
		Metadata:       buildMetadata(in),
		DroppedRecords: dropped,
		FailedChunks:   failed,
	}, nil
}

// extract fans chunk extraction out over a bounded worker pool and fans the
// validated moments back in, preserving chunk order. No new chunk is
// dispatched once ctx is cancelled; in-flight calls run to completion.
func (u Usecase) extract(ctx context.Context, text string, cfg Config) (collected []types.Moment, dropped, failed, total int, err error) {
	chunks, err := chunker.Split(text, chunker.Config{
		MaxChars:     cfg.ChunkMaxChars,
		OverlapChars: cfg.ChunkOverlapChars,
	})
	if err != nil {
		return nil, 0, 0, 0, err
	}

	type chunkResult struct {
		outcomes []moments.Outcome
		failed   bool
	}
	results := make([]chunkResult, len(chunks))

	sem := make(chan struct{}, cfg.Workers)
	var wg sync.WaitGroup
dispatch:
	for i, ch := range chunks {
		if ctx.Err() != nil {
			break dispatch
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, ch types.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			recs, extractErr := u.extractChunk(ctx, ch, cfg)
			if extractErr != nil {
				u.d.Log.Warn().Err(extractErr).Int("chunk", ch.Index).Msg("chunk extraction failed, continuing")
				results[i] = chunkResult{failed: true}
				return
			}
			results[i] = chunkResult{outcomes: moments.ValidateAll(recs, ch, cfg.Validation)}
		}(i, ch)
	}
	wg.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, 0, 0, 0, ctxErr
	}

	for i, res := range results {
		if res.failed {
			failed++
			continue
		}
		chunkDrops := 0
		for _, o := range res.outcomes {
			if !o.Valid() {
				chunkDrops++
				u.d.Log.Debug().Int("chunk", i).Str("reason", o.Drop).Msg("moment record dropped")
				continue
			}
			collected = append(collected, o.Moment)
		}
		dropped += chunkDrops
		if n := len(res.outcomes); n > 0 && float64(chunkDrops)/float64(n) > dropWarnRate {
			u.d.Log.Warn().Int("chunk", i).Int("dropped", chunkDrops).Int("returned", n).
				Msg("high validation drop rate for chunk")
		}
	}
	return collected, dropped, failed, len(chunks), nil
}

// extractChunk consults the cache, then the backend, then repopulates the
// cache. Cache failures are logged and ignored; only backend failures count
// against the chunk.
func (u Usecase) extractChunk(ctx context.Context, ch types.Chunk, cfg Config) ([]moments.Record, error) {
	key := CacheKey(ch.Text, cfg.ConfigVersion)
	if u.d.Cache != nil {
		recs, hit, err := u.d.Cache.Get(ctx, key)
		if err != nil {
			u.d.Log.Warn().Err(err).Int("chunk", ch.Index).Msg("cache get failed")
		} else if hit {
			return recs, nil
		}
	}

	recs, err := u.d.Backend.ExtractMoments(ctx, ch, cfg.MaxMomentsPerChunk)
	if err != nil {
		return nil, err
	}

	if u.d.Cache != nil {
		if err := u.d.Cache.Put(ctx, key, recs); err != nil {
			u.d.Log.Warn().Err(err).Int("chunk", ch.Index).Msg("cache put failed")
		}
	}
	return recs, nil
}

// CacheKey is the deterministic content hash of one extraction call.
func CacheKey(chunkText, configVersion string) string {
	h := sha256.New()
	h.Write([]byte(configVersion))
	h.Write([]byte{0})
	h.Write([]byte(chunkText))
	return hex.EncodeToString(h.Sum(nil))
}

func buildMetadata(in Input) types.Metadata {
	title := in.Title
	if title == "" {
		title = "Catholic Cuts – " + in.SourceID
	}
	sourceType := in.SourceType
	if sourceType == "" {
		sourceType = "manual"
		if strings.HasPrefix(in.SourceID, "http") {
			sourceType = "youtube"
		}
	}
	entropy := ulid.Monotonic(rand.Reader, 0)
	return types.Metadata{
		RunID:      ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
		SourceID:   in.SourceID,
		Title:      title,
		SourceType: sourceType,
	}
}
