// Package whisperapi transcribes uploaded media through OpenAI's hosted
// Whisper endpoint. No local media handling: the file is streamed to the API
// as-is, within the formats and size the API accepts natively.
package whisperapi

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// MaxUploadBytes is the hosted API's file size limit.
const MaxUploadBytes = 25 * 1024 * 1024

const requestTimeout = 10 * time.Minute

// SupportedExtensions are the formats the API accepts without conversion.
var SupportedExtensions = []string{".mp4", ".mp3", ".wav", ".webm"}

type Adapter struct {
	client *openai.Client
	model  openai.AudioModel
}

func New(apiKey string) *Adapter {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Adapter{client: &client, model: openai.AudioModelWhisper1}
}

// Transcribe sends the media to the hosted API and returns plain transcript
// text. size is checked against the API limit before any upload happens.
func (a *Adapter) Transcribe(ctx context.Context, media io.Reader, filename string, size int64) (string, error) {
	if media == nil {
		return "", fmt.Errorf("no media provided for transcription")
	}
	if size > MaxUploadBytes {
		return "", fmt.Errorf("media file too large: %.1fMB (max %dMB)",
			float64(size)/(1024*1024), MaxUploadBytes/(1024*1024))
	}
	if !supported(filename) {
		return "", fmt.Errorf("unsupported media format %q, allowed: %s",
			extOf(filename), strings.Join(SupportedExtensions, ", "))
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.client.Audio.Transcriptions.New(reqCtx, openai.AudioTranscriptionNewParams{
		Model: a.model,
		File:  openai.File(media, filename, ""),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func supported(filename string) bool {
	ext := extOf(filename)
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func extOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i:])
}
