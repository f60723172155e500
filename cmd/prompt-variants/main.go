package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/pallasite/prompt-forge/promptgen"
	"github.com/pallasite/prompt-forge/promptgen/fileutils"
	"github.com/pallasite/prompt-forge/promptgen/provider"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.DebugLLM {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		logger.Error("mkdir -out-dir", "err", err)
		os.Exit(2)
	}

	positivePath := filepath.Join(cfg.OutDir, "positive.txt")
	negativePath := filepath.Join(cfg.OutDir, "negative.txt")

	if !cfg.SkipBase {
		if err := fileutils.WriteLines(positivePath, promptgen.SamplePositives, cfg.Append); err != nil {
			logger.Error("write positive samples", "err", err)
			os.Exit(1)
		}
		if err := fileutils.WriteLines(negativePath, promptgen.SampleNegatives, cfg.Append); err != nil {
			logger.Error("write negative samples", "err", err)
			os.Exit(1)
		}
		logger.Info("wrote sample prompts",
			"positive", positivePath, "positive_lines", len(promptgen.SamplePositives),
			"negative", negativePath, "negative_lines", len(promptgen.SampleNegatives))
	}

	if !cfg.LLM {
		return
	}

	systemPrompt := resolveSystemPrompt(cfg, logger)
	excluded := buildExclusions(cfg, logger)
	seeds, err := resolveSeeds(cfg, positivePath)
	if err != nil {
		logger.Error("collect seeds", "err", err)
		os.Exit(2)
	}

	excludeMode, _ := promptgen.ParseExcludeMode(cfg.ExcludeMode)
	gen := promptgen.NewGenerator(newClient(cfg), promptgen.Options{
		Mode:            promptgen.Mode(cfg.Mode),
		VariantsPerSeed: cfg.Variants,
		Temperature:     cfg.Temperature,
		MaxTokens:       cfg.NumPredict,
		SafeAdultTags:   cfg.SafeAdultTags,
		SystemPrompt:    systemPrompt,
		Excluded:        excluded,
		ExcludeMode:     excludeMode,
		Retries:         cfg.Retries,
		ChatMLFallback:  cfg.ChatMLFallback,
		Logger:          logger,
	})

	targetPath := cfg.VariantsOut
	if targetPath == "" {
		targetPath = positivePath
	}

	if cfg.Incremental {
		if code := runIncremental(ctx, logger, cfg, gen, seeds, targetPath); code != 0 {
			os.Exit(code)
		}
		return
	}

	variants, err := gen.GenerateAll(ctx, seeds)
	if err != nil {
		logger.Error("generation failed", "err", err)
		os.Exit(1)
	}
	if err := fileutils.WriteLines(targetPath, variants, true); err != nil {
		logger.Error("write variants", "err", err)
		os.Exit(1)
	}
	logger.Info("appended variants", "lines", len(variants), "path", targetPath)
}

// runIncremental streams each accepted variant to the target file as soon as
// it is produced, so an interrupt or a service failure leaves everything
// generated so far on disk.
func runIncremental(ctx context.Context, logger *slog.Logger, cfg Config, gen *promptgen.Generator, seeds []string, targetPath string) int {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		logger.Error("mkdir variants dir", "err", err)
		return 1
	}
	out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Error("open variants file", "err", err)
		return 1
	}
	defer out.Close()

	totalPlanned := len(seeds) * cfg.Variants
	appended := 0

	err = gen.Generate(ctx, seeds, func(line string) error {
		if _, err := out.WriteString(line + "\n"); err != nil {
			return err
		}
		if cfg.Fsync {
			if err := out.Sync(); err != nil {
				return err
			}
		}
		appended++
		if cfg.ProgressEvery > 0 && appended%cfg.ProgressEvery == 0 {
			logger.Info("progress", "appended", appended, "planned", totalPlanned, "path", targetPath)
		}
		return nil
	})
	switch {
	case err == nil:
		logger.Info("completed", "appended", appended, "planned", totalPlanned, "path", targetPath)
		return 0
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted", "appended", appended, "planned", totalPlanned, "path", targetPath)
		return 0
	default:
		logger.Error("generation failed", "err", err, "appended", appended, "planned", totalPlanned)
		return 1
	}
}

func resolveSystemPrompt(cfg Config, logger *slog.Logger) string {
	if cfg.SystemPromptFile != "" {
		b, err := os.ReadFile(cfg.SystemPromptFile)
		if err != nil {
			logger.Warn("system prompt file unreadable, using -system-prompt", "path", cfg.SystemPromptFile, "err", err)
			return cfg.SystemPrompt
		}
		return string(b)
	}
	return cfg.SystemPrompt
}

func buildExclusions(cfg Config, logger *slog.Logger) promptgen.ExclusionSet {
	excluded := promptgen.ExclusionSet{}
	for _, raw := range cfg.Exclude {
		excluded.AddText(raw)
	}
	if cfg.ExcludeFile != "" {
		b, err := os.ReadFile(cfg.ExcludeFile)
		if err != nil {
			logger.Warn("exclude file unreadable", "path", cfg.ExcludeFile, "err", err)
		} else {
			excluded.AddText(string(b))
		}
	}
	return excluded
}

// resolveSeeds picks the seed source: -seed, then -from-file, then an
// existing positive.txt, then the built-in samples.
func resolveSeeds(cfg Config, positivePath string) ([]string, error) {
	if cfg.Seed != "" {
		return []string{cfg.Seed}, nil
	}
	if cfg.FromFile != "" {
		return fileutils.ReadLines(cfg.FromFile)
	}
	if fileutils.FileExists(positivePath) {
		return fileutils.ReadLines(positivePath)
	}
	return append([]string(nil), promptgen.SamplePositives...), nil
}

func newClient(cfg Config) promptgen.Client {
	if cfg.Provider == "openai-compat" {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return provider.NewOpenAICompat(cfg.Host, apiKey, cfg.Model)
	}
	return provider.NewOllama(cfg.Host, cfg.Model, cfg.Timeout)
}
