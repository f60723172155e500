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
	Scenario     string
	ScenarioFile string
	Name         string

	Preset       string
	Bundles      stringList
	ExtraBundles stringList

	Provider    string
	Model       string
	Host        string
	APIKey      string
	Chat        bool
	Temperature float64
	NumPredict  int
	Timeout     time.Duration
	Variants    int
	Retries     int

	OutDir           string
	SlugMaxLen       int
	SystemPromptFile string
	ChatMLFallback   bool
	SafeAdultTags    bool
	Debug            bool

	AdultOnly          bool
	AdultFlagFilenames bool
	AdultRejectMinor   bool
	AdultBanned        stringList
	AdultBannedFile    string

	Topics         stringList
	TopicFile      string
	AutoScenario   bool
	StorySentences int
	StoryLanguage  string
	StoryStyle     string

	NumCuts         int
	DurationSec     int
	SequenceAuto    bool
	StructuredShots bool
}

func (c Config) Validate() error {
	if c.Scenario == "" && c.ScenarioFile == "" && len(c.Topics) == 0 && c.TopicFile == "" {
		return errors.New("provide -scenario/-scenario-file, or topics via -topic/-topic-file")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Provider != "ollama" && c.Provider != "openai-compat" {
		return fmt.Errorf("invalid -provider %q (want ollama or openai-compat)", c.Provider)
	}
	if c.Variants < 1 {
		return errors.New("-variants must be >= 1")
	}
	if c.Retries < 0 {
		return errors.New("-retries must be >= 0")
	}
	if c.SlugMaxLen < 1 {
		return errors.New("-slug-max-len must be >= 1")
	}
	if c.StorySentences < 1 {
		return errors.New("-story-sentences must be >= 1")
	}
	if c.StoryLanguage != "en" && c.StoryLanguage != "ko" {
		return fmt.Errorf("invalid -story-language %q (want en or ko)", c.StoryLanguage)
	}
	if c.StoryStyle != "logline" && c.StoryStyle != "vignette" {
		return fmt.Errorf("invalid -story-style %q (want logline or vignette)", c.StoryStyle)
	}
	if c.NumCuts < 0 {
		return errors.New("-num-cuts must be >= 0")
	}
	if c.Timeout <= 0 {
		return errors.New("-timeout must be > 0")
	}
	for _, b := range c.Bundles {
		if _, ok := promptgen.DefaultBundles()[b]; !ok {
			return fmt.Errorf("unknown -bundle %q (known: %s)", b, strings.Join(promptgen.BundleNames(), ", "))
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Preset:          "storyboard",
		Provider:        "ollama",
		Model:           "qwen2.5:7b-instruct-q5_K_M",
		Host:            "http://localhost:11434",
		Temperature:     0.7,
		NumPredict:      256,
		Timeout:         60 * time.Second,
		Variants:        3,
		Retries:         3,
		OutDir:          filepath.FromSlash("output/scenarios"),
		SlugMaxLen:      80,
		ChatMLFallback:  true,
		SafeAdultTags:   true,
		StorySentences:  2,
		StoryLanguage:   "ko",
		StoryStyle:      "logline",
		DurationSec:     10,
		StructuredShots: true,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.Scenario, "scenario", "", "Scenario/story text (short)")
	fs.StringVar(&cfg.ScenarioFile, "scenario-file", "", "File containing scenario/story text")
	fs.StringVar(&cfg.Name, "name", "", "Scenario name for the output folder slug (default: the scenario text)")

	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "Shot preset name")
	fs.Var(&cfg.Bundles, "bundle", "Add a predefined keyword bundle: "+strings.Join(promptgen.BundleNames(), ", ")+" (repeatable)")
	fs.Var(&cfg.ExtraBundles, "extra-bundle", "Extra comma-separated tokens to append (repeatable)")

	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "Generation backend: ollama (native API) or openai-compat")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model name")
	fs.StringVar(&cfg.Host, "llm-host", cfg.Host, "Base URL of the generation service")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key for openai-compat providers (overrides OPENAI_API_KEY)")
	fs.BoolVar(&cfg.Chat, "chat", false, "Use the chat endpoint instead of generate")
	fs.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	fs.IntVar(&cfg.NumPredict, "num-predict", cfg.NumPredict, "Max tokens per generation")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	fs.IntVar(&cfg.Variants, "variants", cfg.Variants, "Variants per shot")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Additional attempts per variant slot")

	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Base output directory")
	fs.IntVar(&cfg.SlugMaxLen, "slug-max-len", cfg.SlugMaxLen, "Max length for the scenario folder slug (hash suffix added if truncated)")
	fs.StringVar(&cfg.SystemPromptFile, "system-prompt-file", "", "System prompt file enforcing output guidelines")
	fs.BoolVar(&cfg.ChatMLFallback, "chatml-fallback", cfg.ChatMLFallback, "Retry generate-mode attempts once with ChatML markup when the response is empty")
	fs.BoolVar(&cfg.SafeAdultTags, "safe-adult-tags", cfg.SafeAdultTags, "Rewrite ambiguous age tags (e.g. '1girl' -> '1woman')")
	fs.BoolVar(&cfg.Debug, "debug", false, "Log raw and normalized LLM outputs")

	fs.BoolVar(&cfg.AdultOnly, "adult-only", false, "Force adult-only hints in the seed (adds 'adult woman')")
	fs.BoolVar(&cfg.AdultFlagFilenames, "adult-flag-filenames", false, "Append '_adult' to shot filenames and mark the index")
	fs.BoolVar(&cfg.AdultRejectMinor, "adult-reject-minor", false, "Filter out outputs containing minor-coded terms")
	fs.Var(&cfg.AdultBanned, "adult-banned", "Additional banned minor-coded tokens (repeatable, comma-separated allowed)")
	fs.StringVar(&cfg.AdultBannedFile, "adult-banned-file", "", "File with additional banned tokens (comma/newline separated)")

	fs.Var(&cfg.Topics, "topic", "Topic/keyword to include in the scenario (repeatable)")
	fs.StringVar(&cfg.TopicFile, "topic-file", "", "File with topics (comma/newline separated)")
	fs.BoolVar(&cfg.AutoScenario, "auto-scenario", false, "Generate the scenario from topics via the LLM")
	fs.IntVar(&cfg.StorySentences, "story-sentences", cfg.StorySentences, "Number of sentences for the auto scenario")
	fs.StringVar(&cfg.StoryLanguage, "story-language", cfg.StoryLanguage, "Language of the auto scenario: en or ko")
	fs.StringVar(&cfg.StoryStyle, "story-style", cfg.StoryStyle, "Auto scenario style: logline or vignette")

	fs.IntVar(&cfg.NumCuts, "num-cuts", 0, "Number of cuts in the sequence (0 = preset length)")
	fs.IntVar(&cfg.DurationSec, "duration-sec", cfg.DurationSec, "Approx total sequence duration in seconds")
	fs.BoolVar(&cfg.SequenceAuto, "sequence-auto", false, "Auto-generate a coherent shot list from the scenario via the LLM")
	fs.BoolVar(&cfg.StructuredShots, "structured-shots", cfg.StructuredShots, "Request the auto shot list as schema-constrained JSON when the backend supports it")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.OutDir = filepath.Clean(cfg.OutDir)
	if cfg.ScenarioFile != "" {
		cfg.ScenarioFile = filepath.Clean(cfg.ScenarioFile)
	}
	if cfg.TopicFile != "" {
		cfg.TopicFile = filepath.Clean(cfg.TopicFile)
	}
	return cfg, nil
}
