package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sundaymedia/catholiccuts/internal/domain/moments"
	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/logger"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

const testQuote = "God is not a vending machine you put prayers into."

// testTranscript is a marked transcript that fits in a single chunk and
// contains testQuote at the 10s-20s span.
func testTranscript() string {
	var b strings.Builder
	b.WriteString("[00:00.00–00:10.00] Good evening everyone, thank you for being here tonight.\n")
	b.WriteString("[00:10.00–00:20.00] " + testQuote + "\n")
	b.WriteString("[00:20.00–00:30.00] He is a Father who knows what you need before you ask.\n")
	return b.String()
}

func testRecord() moments.Record {
	return moments.Record{
		Quote:        testQuote,
		StartSec:     10,
		EndSec:       20,
		ViralTrigger: "insight",
		EnergyTag:    "measured",
		WhyItHits:    "Flips a common transactional view of prayer.",
	}
}

type fakeBackend struct {
	mu    sync.Mutex
	calls int
	recs  []moments.Record
	err   error
}

func (f *fakeBackend) ExtractMoments(_ context.Context, _ types.Chunk, _ int) ([]moments.Record, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.recs, f.err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]moments.Record
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]moments.Record{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]moments.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs, ok := f.entries[key]
	return recs, ok, nil
}

func (f *fakeCache) Put(_ context.Context, key string, recs []moments.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = recs
	f.puts++
	return nil
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Backend: &fakeBackend{}, Log: logger.Nop()})
	_, err := uc.Run(context.Background(), Input{TranscriptText: "   \n "}, Config{})
	if !errs.Is(err, errs.ErrEmptyInput) {
		t.Fatalf("expected EMPTY_INPUT, got %v", err)
	}
}

func TestRun_ConfigBounds(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Backend: &fakeBackend{}, Log: logger.Nop()})
	in := Input{TranscriptText: testTranscript()}

	_, err := uc.Run(context.Background(), in, Config{ChunkMaxChars: 4000})
	if !errs.Is(err, errs.ErrConfig) {
		t.Fatalf("expected CONFIG error for small chunk size, got %v", err)
	}
	_, err = uc.Run(context.Background(), in, Config{MaxMomentsPerChunk: 11})
	if !errs.Is(err, errs.ErrConfig) {
		t.Fatalf("expected CONFIG error for moment budget, got %v", err)
	}
}

func TestRun_ProducesClips(t *testing.T) {
	t.Parallel()

	bad := testRecord()
	bad.ViralTrigger = "vibes"
	backend := &fakeBackend{recs: []moments.Record{testRecord(), bad}}
	uc := New(Deps{Backend: backend, Log: logger.Nop()})

	res, err := uc.Run(context.Background(), Input{TranscriptText: testTranscript(), SourceID: "talk-01"}, Config{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(res.Clips))
	}
	if res.DroppedRecords != 1 {
		t.Fatalf("expected 1 dropped record, got %d", res.DroppedRecords)
	}
	c := res.Clips[0]
	if c.ID == "" {
		t.Error("clip has no ID")
	}
	if c.Moment.Quote != testQuote {
		t.Errorf("unexpected quote: %q", c.Moment.Quote)
	}
	if c.CutSheet.BRollIdeas == "" || c.CutSheet.PlatformPriority == "" {
		t.Error("cut sheet fields not populated")
	}
	if res.Metadata.RunID == "" {
		t.Error("metadata has no run ID")
	}
	if res.Metadata.SourceID != "talk-01" {
		t.Errorf("unexpected source ID: %q", res.Metadata.SourceID)
	}
}

func TestRun_ZeroMomentsIsSuccess(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Backend: &fakeBackend{}, Log: logger.Nop()})
	res, err := uc.Run(context.Background(), Input{TranscriptText: testTranscript()}, Config{})
	if err != nil {
		t.Fatalf("expected success for zero moments, got %v", err)
	}
	if len(res.Clips) != 0 {
		t.Fatalf("expected no clips, got %d", len(res.Clips))
	}
	if res.Metadata.RunID == "" {
		t.Error("metadata missing on empty result")
	}
}

func TestRun_AllChunksFailed(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{err: errors.New("boom")}
	uc := New(Deps{Backend: backend, Log: logger.Nop()})
	_, err := uc.Run(context.Background(), Input{TranscriptText: testTranscript()}, Config{})
	if !errs.Is(err, errs.ErrExtraction) {
		t.Fatalf("expected EXTRACTION error, got %v", err)
	}
}

func TestRun_CacheHitSkipsBackend(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.entries[CacheKey(testTranscript(), "v1")] = []moments.Record{testRecord()}

	backend := &fakeBackend{}
	uc := New(Deps{Backend: backend, Cache: cache, Log: logger.Nop()})
	res, err := uc.Run(context.Background(), Input{TranscriptText: testTranscript()}, Config{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if backend.callCount() != 0 {
		t.Fatalf("expected backend to be skipped, got %d calls", backend.callCount())
	}
	if len(res.Clips) != 1 {
		t.Fatalf("expected 1 clip from cache, got %d", len(res.Clips))
	}
}

func TestRun_CacheMissPopulates(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	backend := &fakeBackend{recs: []moments.Record{testRecord()}}
	uc := New(Deps{Backend: backend, Cache: cache, Log: logger.Nop()})
	if _, err := uc.Run(context.Background(), Input{TranscriptText: testTranscript()}, Config{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if backend.callCount() != 1 {
		t.Fatalf("expected 1 backend call, got %d", backend.callCount())
	}
	if cache.puts != 1 {
		t.Fatalf("expected 1 cache put, got %d", cache.puts)
	}

	// Second run is served from the cache.
	if _, err := uc.Run(context.Background(), Input{TranscriptText: testTranscript()}, Config{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if backend.callCount() != 1 {
		t.Fatalf("expected second run to hit the cache, got %d backend calls", backend.callCount())
	}
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{recs: []moments.Record{testRecord()}}
	uc := New(Deps{Backend: backend, Log: logger.Nop()})
	in := Input{TranscriptText: testTranscript()}

	a, err := uc.Run(context.Background(), in, Config{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := uc.Run(context.Background(), in, Config{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(a.Clips) != 1 || len(b.Clips) != 1 {
		t.Fatalf("expected 1 clip per run, got %d and %d", len(a.Clips), len(b.Clips))
	}
	if a.Clips[0].ID != b.Clips[0].ID {
		t.Fatalf("clip IDs differ between runs: %q vs %q", a.Clips[0].ID, b.Clips[0].ID)
	}
}

func TestRun_DuplicatesAcrossChunksMerged(t *testing.T) {
	t.Parallel()

	// A marker-free transcript long enough for several chunks; every chunk
	// contains the quote, and the backend reports it for each one.
	filler := testQuote + " And he kept returning to that same image again and again for the whole evening. "
	text := strings.Repeat(filler, 140) // well past one chunk at the minimum size

	backend := &fakeBackend{recs: []moments.Record{testRecord()}}
	uc := New(Deps{Backend: backend, Log: logger.Nop()})
	res, err := uc.Run(context.Background(), Input{TranscriptText: text}, Config{
		ChunkMaxChars: 5000,
		Workers:       4,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if backend.callCount() < 2 {
		t.Fatalf("expected multiple chunk extractions, got %d", backend.callCount())
	}
	if len(res.Clips) != 1 {
		t.Fatalf("expected cross-chunk duplicates to merge into 1 clip, got %d", len(res.Clips))
	}
}

func TestRun_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeBackend{recs: []moments.Record{testRecord()}}
	uc := New(Deps{Backend: backend, Log: logger.Nop()})
	_, err := uc.Run(ctx, Input{TranscriptText: testTranscript()}, Config{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	a := CacheKey("chunk text", "v1")
	if a != CacheKey("chunk text", "v1") {
		t.Fatal("cache key not deterministic")
	}
	if a == CacheKey("chunk text", "v2") {
		t.Fatal("config version not part of the key")
	}
	if a == CacheKey("other text", "v1") {
		t.Fatal("chunk text not part of the key")
	}
	if len(a) != 64 {
		t.Fatalf("unexpected key length %d", len(a))
	}
}
