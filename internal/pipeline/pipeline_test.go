package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/sundaymedia/catholiccuts/internal/errors"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 45, 30, 0, time.UTC)
	got := buildRunOutDir("out", "My Parish Talk.mp4", "01JQF8ZZZZZZZZZZZZZZZZZZZZ", now)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	base := filepath.Base(got)
	if !strings.HasPrefix(base, "my-parish-talk-20260315-094530Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if !strings.HasSuffix(base, "zzzzzz") {
		t.Fatalf("expected run-id suffix, got %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Parish Talk  ": "my-parish-talk",
		"___":                "",
		"abc123":             "abc123",
		"Homily (v2)!":       "homily-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func validConfig(t *testing.T) Config {
	t.Helper()
	tmp := t.TempDir()
	src := filepath.Join(tmp, "transcript.txt")
	if err := os.WriteFile(src, []byte("[00:00.00–00:05.00] hello"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return Config{
		Source:       src,
		OpenAIAPIKey: "sk-test",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty source", mutate: func(c *Config) { c.Source = "  " }},
		{name: "missing api key", mutate: func(c *Config) { c.OpenAIAPIKey = "" }},
		{name: "missing file", mutate: func(c *Config) { c.Source = "/nonexistent/path.txt" }},
		{name: "chunk size too small", mutate: func(c *Config) { c.ChunkMaxChars = 4000 }},
		{name: "chunk size too large", mutate: func(c *Config) { c.ChunkMaxChars = 16000 }},
		{name: "bad moment budget", mutate: func(c *Config) { c.MaxMomentsPerChunk = 11 }},
		{name: "bad workers", mutate: func(c *Config) { c.Workers = 99 }},
		{name: "url without apify token", mutate: func(c *Config) {
			c.Source = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
		}},
		{name: "url with bad video id", mutate: func(c *Config) {
			c.Source = "https://www.youtube.com/watch?v=short"
			c.ApifyToken = "tok"
			c.ApifyActorID = "actor"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrConfig) && !errs.Is(err, errs.ErrTranscriptSource) {
				t.Fatalf("unexpected error kind: %v", err)
			}
		})
	}
}

func TestIsMediaExt(t *testing.T) {
	for ext, want := range map[string]bool{
		".mp4": true, ".mp3": true, ".wav": true, ".webm": true,
		".txt": false, ".mov": false, "": false,
	} {
		if got := isMediaExt(ext); got != want {
			t.Errorf("isMediaExt(%q) = %v, want %v", ext, got, want)
		}
	}
}
