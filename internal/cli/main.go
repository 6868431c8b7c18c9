package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "catholiccuts <source>",
		Short:        "Extract viral clip cut sheets from a sermon or podcast transcript",
		Long:         "Source is a YouTube URL, a media file (transcribed via Whisper), or a transcript text file.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("title", "", "Override the run title")
	root.Flags().String("language", "en", "Transcript language for URL sources")
	root.Flags().Int("max-moments", 5, "Max moments extracted per chunk (1-10)")
	root.Flags().Int("workers", 1, "Concurrent extraction calls (1-8)")
	root.Flags().Bool("no-cache", false, "Disable the extraction cache")
	root.Flags().BoolP("verbose", "v", false, "Debug logging")

	// Hidden tuning flags (internal)
	root.Flags().Int("chunk-chars", 8000, "Chunk size in characters")
	root.Flags().Int("chunk-overlap", 400, "Chunk overlap in characters")
	root.Flags().String("cache-dir", ".cache", "Extraction cache directory")
	root.Flags().String("log-format", "console", "Log format: console or json")
	_ = root.Flags().MarkHidden("chunk-chars")
	_ = root.Flags().MarkHidden("chunk-overlap")
	_ = root.Flags().MarkHidden("cache-dir")
	_ = root.Flags().MarkHidden("log-format")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
