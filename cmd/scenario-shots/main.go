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
	"strings"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/pallasite/prompt-forge/promptgen"
	"github.com/pallasite/prompt-forge/promptgen/fileutils"
	"github.com/pallasite/prompt-forge/promptgen/provider"
)

var shotListSchema = provider.GenerateSchema[promptgen.ShotList]()

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
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg)
	callOpts := promptgen.GenOptions{Temperature: cfg.Temperature, MaxTokens: cfg.NumPredict}

	scenario := cfg.Scenario
	if scenario == "" && cfg.ScenarioFile != "" {
		b, err := os.ReadFile(cfg.ScenarioFile)
		if err != nil {
			logger.Error("read scenario file", "path", cfg.ScenarioFile, "err", err)
			os.Exit(2)
		}
		scenario = strings.TrimSpace(string(b))
	}

	topics := collectTopics(cfg, logger)

	if (cfg.AutoScenario || scenario == "") && len(topics) > 0 {
		scenario, err = autoScenario(ctx, client, cfg, topics, callOpts)
		if err != nil {
			logger.Error("auto-generate scenario from topics", "err", err)
			os.Exit(1)
		}
		logger.Info("auto-generated scenario", "text", fileutils.Truncate(scenario, 160))
	}
	if scenario == "" {
		fmt.Fprintln(os.Stderr, "no scenario: provide -scenario/-scenario-file or topics with -auto-scenario")
		os.Exit(2)
	}

	systemPrompt := ""
	if cfg.SystemPromptFile != "" {
		b, err := os.ReadFile(cfg.SystemPromptFile)
		if err != nil {
			logger.Warn("system prompt file unreadable", "path", cfg.SystemPromptFile, "err", err)
		} else {
			systemPrompt = string(b)
		}
	}

	bundleTokens := selectBundleTokens(cfg)

	shots := planShots(ctx, logger, client, cfg, scenario, topics, callOpts)

	scenarioName := cfg.Name
	if scenarioName == "" {
		scenarioName = scenario
	}
	slug := promptgen.Slugify(scenarioName, cfg.SlugMaxLen, true)
	outDir := filepath.Join(cfg.OutDir, slug)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Error("mkdir scenario dir", "path", outDir, "err", err)
		os.Exit(1)
	}

	banned := buildBannedSet(cfg, logger)

	mode := promptgen.ModeGenerate
	if cfg.Chat {
		mode = promptgen.ModeChat
	}
	gen := promptgen.NewGenerator(client, promptgen.Options{
		Mode:            mode,
		VariantsPerSeed: cfg.Variants,
		Temperature:     cfg.Temperature,
		MaxTokens:       cfg.NumPredict,
		SafeAdultTags:   cfg.SafeAdultTags,
		SystemPrompt:    systemPrompt,
		Retries:         cfg.Retries,
		ChatMLFallback:  cfg.ChatMLFallback,
		Logger:          logger,
	})

	for _, shot := range shots {
		seed := promptgen.ComposeSeed(scenario, shot.Tokens, bundleTokens)

		suffix := ""
		if cfg.AdultFlagFilenames {
			suffix = "_adult"
		}
		filePath := filepath.Join(outDir, shot.Key+suffix+".txt")

		produced, filtered, err := writeShotFile(ctx, gen, seed, filePath, cfg.AdultRejectMinor, banned)
		switch {
		case err == nil:
			logger.Info("wrote shot file", "path", filePath, "lines", produced, "filtered", filtered)
		case errors.Is(err, context.Canceled):
			logger.Warn("interrupted", "path", filePath, "lines", produced)
			return
		default:
			logger.Error("shot generation failed", "path", filePath, "err", err)
			os.Exit(1)
		}
	}

	indexPath := filepath.Join(outDir, "INDEX.txt")
	if err := writeIndex(indexPath, cfg, scenarioName, scenario, topics, shots); err != nil {
		logger.Error("write index", "path", indexPath, "err", err)
		os.Exit(1)
	}
	logger.Info("wrote scenario index", "path", indexPath, "shots", len(shots))
}

// writeShotFile streams accepted variants for one shot seed into its file.
// With rejectMinor set, lines carrying banned tokens are dropped after
// generation and counted separately.
func writeShotFile(ctx context.Context, gen *promptgen.Generator, seed, path string, rejectMinor bool, banned promptgen.ExclusionSet) (produced, filtered int, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	err = gen.Generate(ctx, []string{seed}, func(line string) error {
		if rejectMinor && containsBanned(line, banned) {
			filtered++
			return nil
		}
		if _, err := f.WriteString(line + "\n"); err != nil {
			return err
		}
		produced++
		return nil
	})
	return produced, filtered, err
}

func containsBanned(line string, banned promptgen.ExclusionSet) bool {
	for _, t := range promptgen.SplitTags(line) {
		if banned.Has(t) {
			return true
		}
	}
	return false
}

// autoScenario asks the model for a short scenario built from topics,
// preferring chat and falling back to a ChatML-wrapped generate call when
// the chat reply is empty.
func autoScenario(ctx context.Context, client promptgen.Client, cfg Config, topics []string, opts promptgen.GenOptions) (string, error) {
	system, user := promptgen.BuildStoryPrompt(topics, cfg.StorySentences, cfg.StoryLanguage, cfg.StoryStyle)

	text, err := client.Chat(ctx, system, user, opts)
	if err != nil {
		return "", err
	}
	if s := strings.TrimSpace(text); s != "" {
		return s, nil
	}

	text, err = client.Generate(ctx, promptgen.BuildChatML(system, user), opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// planShots decides the shot list: auto-generated when -sequence-auto is set
// (structured JSON first, text parsing second), otherwise the preset, in both
// cases trimmed or cycled to -num-cuts.
func planShots(ctx context.Context, logger *slog.Logger, client promptgen.Client, cfg Config, scenario string, topics []string, opts promptgen.GenOptions) []promptgen.Shot {
	preset := promptgen.ShotPreset(cfg.Preset)
	if !cfg.SequenceAuto || cfg.NumCuts <= 0 {
		if cfg.NumCuts > 0 {
			return promptgen.ExtendShots(preset, cfg.NumCuts)
		}
		return preset
	}

	system, user := promptgen.BuildShotListPrompt(scenario, topics, cfg.NumCuts, cfg.DurationSec, cfg.StoryLanguage)

	if cfg.StructuredShots {
		if sc, ok := client.(provider.StructuredChatter); ok {
			raw, err := sc.ChatStructured(ctx, system, user, shotListSchema, opts)
			if err == nil {
				var list promptgen.ShotList
				if derr := fileutils.DecodeLooseJSON(raw, &list); derr == nil && len(list.Shots) > 0 {
					shots := promptgen.ShotsFromPlans(list.Shots)
					if len(shots) > cfg.NumCuts {
						shots = shots[:cfg.NumCuts]
					}
					return shots
				}
				logger.Warn("structured shot list unusable, falling back to text format")
			} else {
				logger.Warn("structured shot list failed, falling back to text format", "err", err)
			}
		}
	}

	var raw string
	var err error
	if cfg.Chat {
		raw, err = client.Chat(ctx, system, user, opts)
	} else {
		raw, err = client.Generate(ctx, user, opts)
		if err == nil && strings.TrimSpace(raw) == "" && cfg.ChatMLFallback {
			raw, err = client.Generate(ctx, promptgen.BuildChatML(system, user), opts)
		}
	}
	if err != nil {
		logger.Error("auto-generate shot list", "err", err)
		os.Exit(1)
	}

	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}
	shots := promptgen.ParseShotList(lines)
	if len(shots) > cfg.NumCuts {
		shots = shots[:cfg.NumCuts]
	}
	if len(shots) == 0 {
		logger.Warn("empty shot list from model, using preset", "preset", cfg.Preset)
		return promptgen.ExtendShots(preset, cfg.NumCuts)
	}
	return shots
}

func collectTopics(cfg Config, logger *slog.Logger) []string {
	topics := append([]string(nil), cfg.Topics...)
	if cfg.TopicFile != "" {
		b, err := os.ReadFile(cfg.TopicFile)
		if err != nil {
			logger.Warn("topic file unreadable", "path", cfg.TopicFile, "err", err)
			return topics
		}
		for _, part := range strings.Split(strings.ReplaceAll(string(b), "\n", ","), ",") {
			if p := strings.TrimSpace(part); p != "" {
				topics = append(topics, p)
			}
		}
	}
	return topics
}

func selectBundleTokens(cfg Config) []string {
	bundles := promptgen.DefaultBundles()
	var tokens []string
	for _, key := range cfg.Bundles {
		tokens = append(tokens, bundles[key]...)
	}
	for _, extra := range cfg.ExtraBundles {
		for _, part := range strings.Split(strings.ReplaceAll(extra, "\n", ","), ",") {
			if p := strings.TrimSpace(part); p != "" {
				tokens = append(tokens, p)
			}
		}
	}
	if cfg.AdultOnly {
		tokens = append(tokens, "adult woman")
	}
	return tokens
}

func buildBannedSet(cfg Config, logger *slog.Logger) promptgen.ExclusionSet {
	banned := promptgen.ExclusionSet{}
	for _, t := range promptgen.DefaultMinorCodedTags {
		banned.Add(t)
	}
	for _, raw := range cfg.AdultBanned {
		banned.AddText(raw)
	}
	if cfg.AdultBannedFile != "" {
		b, err := os.ReadFile(cfg.AdultBannedFile)
		if err != nil {
			logger.Warn("banned tokens file unreadable", "path", cfg.AdultBannedFile, "err", err)
		} else {
			banned.AddText(string(b))
		}
	}
	return banned
}

func writeIndex(path string, cfg Config, scenarioName, scenario string, topics []string, shots []promptgen.Shot) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s\n", scenarioName)
	if len(topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(topics, ", "))
	}
	b.WriteString("\n--- Scenario Text ---\n")
	b.WriteString(strings.TrimSpace(scenario) + "\n")
	b.WriteString("\n--- Settings ---\n")
	fmt.Fprintf(&b, "Model: %s\n", cfg.Model)
	fmt.Fprintf(&b, "Provider: %s\n", cfg.Provider)
	fmt.Fprintf(&b, "Preset: %s\n", cfg.Preset)
	if cfg.NumCuts > 0 {
		fmt.Fprintf(&b, "Num cuts: %d\n", cfg.NumCuts)
	}
	if cfg.DurationSec > 0 {
		fmt.Fprintf(&b, "Duration: ~%ds\n", cfg.DurationSec)
	}
	if cfg.AdultOnly || cfg.AdultFlagFilenames || cfg.AdultRejectMinor {
		b.WriteString("Adult options:\n")
		if cfg.AdultOnly {
			b.WriteString("- adult_only (added 'adult woman' to seed)\n")
		}
		if cfg.AdultFlagFilenames {
			b.WriteString("- adult_flag_filenames (files suffixed with _adult)\n")
		}
		if cfg.AdultRejectMinor {
			b.WriteString("- adult_reject_minor (filtered minor-coded tokens)\n")
		}
	}
	if len(cfg.Bundles) > 0 {
		fmt.Fprintf(&b, "Bundles: %s\n", strings.Join(cfg.Bundles, ", "))
	}
	if len(cfg.ExtraBundles) > 0 {
		fmt.Fprintf(&b, "Extra: %s\n", strings.Join(cfg.ExtraBundles, ", "))
	}
	suffix := ""
	if cfg.AdultFlagFilenames {
		suffix = "_adult"
	}
	b.WriteString("Files:\n")
	for _, shot := range shots {
		fmt.Fprintf(&b, "- %s%s.txt\n", shot.Key, suffix)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
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
