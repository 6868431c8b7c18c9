// Package ports declares the interfaces the pipeline core needs from its
// external collaborators. Adapters live in subpackages.
package ports

import (
	"context"
	"io"

	"github.com/sundaymedia/catholiccuts/internal/domain/moments"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// ModelBackend runs one structured-output extraction call for a chunk. The
// backend owns its retry/backoff policy; an error here means the backend is
// exhausted for this chunk. Returned records are unvalidated.
type ModelBackend interface {
	ExtractMoments(ctx context.Context, chunk types.Chunk, maxMoments int) ([]moments.Record, error)
}

// ExtractionCache stores raw extraction results keyed by a content hash of
// (chunk text, extraction config version). A miss is (nil, false, nil), not
// an error. Puts for the same key are idempotent; either racing writer's
// result is acceptable.
type ExtractionCache interface {
	Get(ctx context.Context, key string) ([]moments.Record, bool, error)
	Put(ctx context.Context, key string, recs []moments.Record) error
}

// Transcriber converts uploaded audio/video into plain transcript text via a
// hosted speech-to-text service.
type Transcriber interface {
	Transcribe(ctx context.Context, media io.Reader, filename string, size int64) (string, error)
}

// TranscriptFetcher retrieves a formatted transcript and video metadata for
// a video URL through a third-party transcript API.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL, language string) (string, types.VideoMeta, error)
}
