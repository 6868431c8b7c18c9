package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sundaymedia/catholiccuts/internal/logger"
	"github.com/sundaymedia/catholiccuts/internal/pipeline"
)

func run(cmd *cobra.Command, source string) error {
	outDir, _ := cmd.Flags().GetString("out")
	title, _ := cmd.Flags().GetString("title")
	language, _ := cmd.Flags().GetString("language")
	maxMoments, _ := cmd.Flags().GetInt("max-moments")
	workers, _ := cmd.Flags().GetInt("workers")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	verbose, _ := cmd.Flags().GetBool("verbose")
	chunkChars, _ := cmd.Flags().GetInt("chunk-chars")
	chunkOverlap, _ := cmd.Flags().GetInt("chunk-overlap")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	logFormat, _ := cmd.Flags().GetString("log-format")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return errors.New("OPENAI_API_KEY is required (set it in .env)")
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{
		Level:     level,
		Format:    logFormat,
		Component: "catholiccuts",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := pipeline.Config{
		Source:   source,
		Language: language,
		Title:    title,
		OutDir:   outDir,

		CacheDir: cacheDir,
		NoCache:  noCache,

		ChunkMaxChars:      chunkChars,
		ChunkOverlapChars:  chunkOverlap,
		MaxMomentsPerChunk: maxMoments,
		Workers:            workers,

		OpenAIAPIKey: apiKey,
		Model:        os.Getenv("OPENAI_MODEL"),

		ApifyToken:   os.Getenv("APIFY_TOKEN"),
		ApifyActorID: os.Getenv("APIFY_ACTOR_ID"),
		ApifyBaseURL: os.Getenv("APIFY_BASE_URL"),

		Log: log,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err := pipeline.Run(ctx, cfg)
	return err
}
