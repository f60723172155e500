package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pallasite/prompt-forge/promptgen"
)

// stringList is a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type Config struct {
	OutDir   string
	Append   bool
	SkipBase bool

	LLM              bool
	Provider         string
	Model            string
	Host             string
	APIKey           string
	Mode             string
	Temperature      float64
	NumPredict       int
	Timeout          time.Duration
	Variants         int
	Seed             string
	FromFile         string
	SystemPrompt     string
	SystemPromptFile string
	ChatMLFallback   bool
	SafeAdultTags    bool
	DebugLLM         bool

	Exclude     stringList
	ExcludeFile string
	ExcludeMode string
	Retries     int

	VariantsOut   string
	Incremental   bool
	Fsync         bool
	ProgressEvery int
}

func (c Config) Validate() error {
	if c.OutDir == "" {
		return errors.New("missing -out-dir")
	}
	if !c.LLM {
		return nil
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Provider != "ollama" && c.Provider != "openai-compat" {
		return fmt.Errorf("invalid -provider %q (want ollama or openai-compat)", c.Provider)
	}
	if c.Mode != string(promptgen.ModeGenerate) && c.Mode != string(promptgen.ModeChat) {
		return fmt.Errorf("invalid -llm-mode %q (want generate or chat)", c.Mode)
	}
	if _, err := promptgen.ParseExcludeMode(c.ExcludeMode); err != nil {
		return err
	}
	if c.Variants < 1 {
		return errors.New("-variants must be >= 1")
	}
	if c.Retries < 0 {
		return errors.New("-retries must be >= 0")
	}
	if c.NumPredict < 1 {
		return errors.New("-num-predict must be >= 1")
	}
	if c.Timeout <= 0 {
		return errors.New("-timeout must be > 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutDir:         "output",
		Provider:       "ollama",
		Model:          "llama3.1:8b-instruct-q5_K_M",
		Host:           "http://localhost:11434",
		Mode:           string(promptgen.ModeGenerate),
		Temperature:    0.7,
		NumPredict:     256,
		Timeout:        60 * time.Second,
		Variants:       3,
		ChatMLFallback: true,
		SafeAdultTags:  true,
		ExcludeMode:    string(promptgen.ExcludeDrop),
		Retries:        3,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Output directory for positive.txt/negative.txt")
	fs.BoolVar(&cfg.Append, "append", false, "Append to existing sample files instead of overwriting")
	fs.BoolVar(&cfg.SkipBase, "skip-base", false, "Skip writing the built-in sample prompts")

	fs.BoolVar(&cfg.LLM, "llm", false, "Generate similar positive prompts with a local LLM")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "Generation backend: ollama (native API) or openai-compat")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model name")
	fs.StringVar(&cfg.Host, "llm-host", cfg.Host, "Base URL of the generation service")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key for openai-compat providers (overrides OPENAI_API_KEY)")
	fs.StringVar(&cfg.Mode, "llm-mode", cfg.Mode, "Endpoint to use: generate or chat")
	fs.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	fs.IntVar(&cfg.NumPredict, "num-predict", cfg.NumPredict, "Max tokens per generation")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	fs.IntVar(&cfg.Variants, "variants", cfg.Variants, "Variants per seed")
	fs.StringVar(&cfg.Seed, "seed", "", "Single seed prompt string (overrides -from-file)")
	fs.StringVar(&cfg.FromFile, "from-file", "", "Read seeds from file (one per line)")
	fs.StringVar(&cfg.SystemPrompt, "system-prompt", "", "Override the system prompt for chat/ChatML modes")
	fs.StringVar(&cfg.SystemPromptFile, "system-prompt-file", "", "Read the system prompt from a file (overrides -system-prompt)")
	fs.BoolVar(&cfg.ChatMLFallback, "chatml-fallback", cfg.ChatMLFallback, "Retry generate-mode attempts once with ChatML markup when the response is empty")
	fs.BoolVar(&cfg.SafeAdultTags, "safe-adult-tags", cfg.SafeAdultTags, "Rewrite ambiguous age tags (e.g. '1girl' -> '1woman')")
	fs.BoolVar(&cfg.DebugLLM, "debug-llm", false, "Log raw and normalized LLM outputs")

	fs.Var(&cfg.Exclude, "exclude", "Exclude tokens (comma-separated); may be repeated")
	fs.StringVar(&cfg.ExcludeFile, "exclude-file", "", "File with tokens to exclude (one per line or comma-separated)")
	fs.StringVar(&cfg.ExcludeMode, "exclude-mode", cfg.ExcludeMode, "drop: remove excluded tokens; reject: discard lines containing them")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Additional attempts per variant slot")

	fs.StringVar(&cfg.VariantsOut, "variants-out", "", "Write LLM variants to a separate file (default: positive.txt)")
	fs.BoolVar(&cfg.Incremental, "incremental", false, "Append each generated variant immediately")
	fs.BoolVar(&cfg.Fsync, "fsync", false, "fsync after each appended line (safer, slower)")
	fs.IntVar(&cfg.ProgressEvery, "progress-every", 0, "Log progress every N appended lines (0 = off)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.OutDir = filepath.Clean(cfg.OutDir)
	if cfg.FromFile != "" {
		cfg.FromFile = filepath.Clean(cfg.FromFile)
	}
	if cfg.VariantsOut != "" {
		cfg.VariantsOut = filepath.Clean(cfg.VariantsOut)
	}
	return cfg, nil
}
