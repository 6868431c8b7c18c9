package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeYouTubeURL(t *testing.T) {
	t.Parallel()

	const want = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=share",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"www.youtube.com/watch?v=dQw4w9WgXcQ",
		"  https://m.youtube.com/watch?v=dQw4w9WgXcQ  ",
	}
	for _, in := range valid {
		got, err := NormalizeYouTubeURL(in)
		if err != nil {
			t.Errorf("NormalizeYouTubeURL(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeYouTubeURL(%q) = %q, want %q", in, got, want)
		}
	}

	invalid := []string{
		"",
		"https://www.youtube.com/watch?v=short",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/playlist?list=abc",
		"not a url at all",
	}
	for _, in := range invalid {
		if got, err := NormalizeYouTubeURL(in); err == nil {
			t.Errorf("NormalizeYouTubeURL(%q): expected error, got %q", in, got)
		}
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "test~actor") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "tok" {
			t.Errorf("token not passed: %s", r.URL.RawQuery)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if body["youtube_url"] != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
			t.Errorf("url not canonicalized in request: %q", body["youtube_url"])
		}

		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"status":   "success",
			"title":    "A Talk on Prayer",
			"video_id": "dQw4w9WgXcQ",
			"language": "en",
			"transcript": []map[string]any{
				{"text": "In the beginning", "start": 0.0, "end": 4.5},
				{"text": "  ", "start": 4.5, "end": 5.0},
				{"text": "was the Word", "start": 5.0, "end": 9.25},
			},
		}})
	}))
	defer srv.Close()

	a := New("tok", "test~actor", srv.URL)
	text, meta, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := "[00:00.00–00:04.50] In the beginning\n[00:05.00–00:09.25] was the Word"
	if text != want {
		t.Fatalf("transcript = %q, want %q", text, want)
	}
	if meta.Title != "A Talk on Prayer" || meta.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestFetch_ActorFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"status":  "error",
			"message": "video is private",
		}})
	}))
	defer srv.Close()

	a := New("tok", "test~actor", srv.URL)
	_, _, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
	if err == nil || !strings.Contains(err.Error(), "video is private") {
		t.Fatalf("expected actor failure to surface, got %v", err)
	}
}

func TestFetch_RedactsTokenInErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token secret-tok"}`))
	}))
	defer srv.Close()

	a := New("secret-tok", "test~actor", srv.URL)
	_, _, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret-tok") {
		t.Fatalf("token leaked into error: %v", err)
	}
}

func TestFetch_NoTranscript(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"status": "success",
			"title":  "Captionless",
		}})
	}))
	defer srv.Close()

	a := New("tok", "test~actor", srv.URL)
	_, _, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
	if err == nil || !strings.Contains(err.Error(), "no transcript") {
		t.Fatalf("expected no-transcript error, got %v", err)
	}
}
