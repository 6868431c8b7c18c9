// Package apify fetches YouTube transcripts through an Apify actor's
// synchronous run endpoint and flattens them into the pipeline's
// [MM:SS.xx–MM:SS.xx] transcript format.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sundaymedia/catholiccuts/internal/transcript"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

const (
	defaultBaseURL = "https://api.apify.com"
	requestTimeout = 5 * time.Minute
)

type Adapter struct {
	token   string
	actorID string
	baseURL string
	client  *http.Client
}

func New(token, actorID, baseURL string) *Adapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		token:   token,
		actorID: actorID,
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// item is the actor's per-video response shape.
type item struct {
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Transcript []segment `json:"transcript"`

	Title           string `json:"title"`
	ChannelName     string `json:"channel_name"`
	VideoID         string `json:"video_id"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds"`
	Language        string `json:"language"`
	ViewCount       int64  `json:"view_count"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
}

type segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Fetch normalizes the video URL, runs the actor synchronously, and returns
// the flattened transcript plus video metadata.
func (a *Adapter) Fetch(ctx context.Context, videoURL, language string) (string, types.VideoMeta, error) {
	canonical, err := NormalizeYouTubeURL(videoURL)
	if err != nil {
		return "", types.VideoMeta{}, err
	}

	language = strings.TrimSpace(language)
	if language == "" {
		language = "en"
	}

	payload, err := json.Marshal(map[string]string{
		"youtube_url": canonical,
		"language":    language,
	})
	if err != nil {
		return "", types.VideoMeta{}, err
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		a.baseURL, url.PathEscape(a.actorID), url.QueryEscape(a.token))

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", types.VideoMeta{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", types.VideoMeta{}, fmt.Errorf("apify timeout after %s", requestTimeout)
		}
		return "", types.VideoMeta{}, fmt.Errorf("apify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", types.VideoMeta{}, fmt.Errorf("apify status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", types.VideoMeta{}, fmt.Errorf("apify status %d: %s", resp.StatusCode, truncate(redactToken(string(rb), a.token), 400))
	}

	var items []item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return "", types.VideoMeta{}, fmt.Errorf("apify decode: %w", err)
	}
	if len(items) == 0 {
		return "", types.VideoMeta{}, errors.New("apify returned no items")
	}

	it := items[0]
	if it.Status != "" && it.Status != "success" {
		msg := it.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", types.VideoMeta{}, fmt.Errorf("apify actor failed: %s", msg)
	}
	if len(it.Transcript) == 0 {
		return "", types.VideoMeta{}, fmt.Errorf("no transcript available for %s; video may lack captions or be restricted", canonical)
	}

	meta := types.VideoMeta{
		Title:           it.Title,
		ChannelName:     it.ChannelName,
		VideoID:         it.VideoID,
		URL:             it.URL,
		DurationSeconds: it.DurationSeconds,
		Language:        it.Language,
		ViewCount:       it.ViewCount,
		IsAutoGenerated: it.IsAutoGenerated,
	}
	if meta.URL == "" {
		meta.URL = canonical
	}
	if meta.Language == "" {
		meta.Language = language
	}
	return flatten(it.Transcript), meta, nil
}

// flatten renders segments as one [start–end] marker line per segment.
func flatten(segs []segment) string {
	lines := make([]string, 0, len(segs))
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		start := time.Duration(s.Start * float64(time.Second))
		end := time.Duration(s.End * float64(time.Second))
		lines = append(lines, transcript.FormatRange(start, end)+" "+text)
	}
	return strings.Join(lines, "\n")
}

// NormalizeYouTubeURL accepts any reasonable YouTube URL (watch, youtu.be,
// shorts, embed, extra params) and returns the canonical watch URL. An
// 11-character video ID is required.
func NormalizeYouTubeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty YouTube URL")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid YouTube URL %q: %w", raw, err)
	}

	host := strings.ToLower(u.Hostname())
	path := u.Path

	var videoID string
	switch {
	case strings.Contains(host, "youtu.be"):
		videoID = strings.TrimPrefix(path, "/")
	case strings.Contains(host, "youtube.com"):
		switch {
		case strings.HasPrefix(path, "/watch"):
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "/shorts/"):
			videoID = strings.TrimPrefix(path, "/shorts/")
		case strings.HasPrefix(path, "/embed/"):
			videoID = strings.TrimPrefix(path, "/embed/")
		}
	}
	videoID = strings.Trim(videoID, "/")

	if len(videoID) != 11 {
		return "", fmt.Errorf("invalid YouTube URL %q: an 11-character video ID is required", raw)
	}
	return "https://www.youtube.com/watch?v=" + videoID, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func redactToken(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "[REDACTED]")
}
