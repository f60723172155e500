package promptgen

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Mode selects which generation service endpoint the Generator calls.
type Mode string

const (
	// ModeGenerate uses the plain completion endpoint (/api/generate).
	ModeGenerate Mode = "generate"
	// ModeChat uses the chat endpoint (/api/chat) with a system message.
	ModeChat Mode = "chat"
)

// GenOptions are the per-call sampling knobs passed to a Client.
type GenOptions struct {
	Temperature float64
	MaxTokens   int
}

// Client is the generation service consumed by the Generator. Implementations
// live in the provider package; tests use stubs.
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenOptions) (string, error)
	Chat(ctx context.Context, system, user string, opts GenOptions) (string, error)
}

// Options configures a Generator. The zero value is not usable; pass it
// through NewGenerator, which fills defaults.
type Options struct {
	Mode            Mode
	VariantsPerSeed int
	Temperature     float64
	MaxTokens       int

	// SafeAdultTags enables the ambiguous age-tag rewrite on seeds.
	SafeAdultTags bool
	// SystemPrompt overrides the default system message (chat mode and the
	// ChatML fallback). Empty means use the built-in defaults.
	SystemPrompt string

	Excluded    ExclusionSet
	ExcludeMode ExcludeMode
	// Retries is the number of additional attempts per slot after the first.
	Retries int

	// ChatMLFallback retries a generate-mode attempt once with ChatML-wrapped
	// markup when the plain response comes back empty. Callers decide whether
	// their model needs it; the Generator never inspects model names.
	ChatMLFallback bool

	Logger *slog.Logger
}

// Generator produces accepted prompt variants for a sequence of seeds,
// retrying rejected or empty attempts up to the configured bound.
type Generator struct {
	client Client
	opts   Options
	logger *slog.Logger
}

// NewGenerator wires a Generator to a Client and normalizes option defaults.
func NewGenerator(client Client, opts Options) *Generator {
	if opts.Mode == "" {
		opts.Mode = ModeGenerate
	}
	if opts.VariantsPerSeed < 1 {
		opts.VariantsPerSeed = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 256
	}
	if opts.ExcludeMode == "" {
		opts.ExcludeMode = ExcludeDrop
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{client: client, opts: opts, logger: logger}
}

// Generate runs the constrained retry loop for every seed and slot, calling
// emit with each accepted variant as soon as it is determined. Slots that
// exhaust their attempts produce nothing and are skipped silently. Transport
// or service errors from the Client abort generation immediately; an error
// from emit does the same, so callers can stop early without triggering
// further service calls.
func (g *Generator) Generate(ctx context.Context, seeds []string, emit func(variant string) error) error {
	attempts := g.opts.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	for _, seed := range seeds {
		clean := SanitizeSeed(seed, g.opts.SafeAdultTags, g.opts.Excluded)
		instruction := BuildVariantInstruction(clean)

		for slot := 0; slot < g.opts.VariantsPerSeed; slot++ {
			accepted := ""
			for try := 0; try < attempts; try++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				candidate, err := g.attempt(ctx, instruction)
				if err != nil {
					return err
				}
				if candidate == "" {
					continue
				}
				kept, ok := FilterTags(SplitTags(candidate), g.opts.Excluded, g.opts.ExcludeMode)
				if !ok {
					g.logger.Debug("candidate filtered out", "candidate", candidate)
					continue
				}
				accepted = JoinTags(kept)
				break
			}
			if accepted == "" {
				g.logger.Debug("slot exhausted", "seed", clean, "slot", slot)
				continue
			}
			if err := emit(accepted); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateAll collects every accepted variant into a slice.
func (g *Generator) GenerateAll(ctx context.Context, seeds []string) ([]string, error) {
	var out []string
	err := g.Generate(ctx, seeds, func(v string) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// attempt performs one service call (with the optional ChatML fallback stage
// in generate mode) and normalizes the raw response to a single-line
// candidate. An empty return with nil error means the attempt failed locally.
func (g *Generator) attempt(ctx context.Context, instruction string) (string, error) {
	call := GenOptions{Temperature: g.opts.Temperature, MaxTokens: g.opts.MaxTokens}

	var raw string
	var err error
	if g.opts.Mode == ModeChat {
		raw, err = g.client.Chat(ctx, g.chatSystemPrompt(), instruction, call)
	} else {
		raw, err = g.client.Generate(ctx, instruction, call)
		if err == nil && strings.TrimSpace(raw) == "" && g.opts.ChatMLFallback {
			raw, err = g.client.Generate(ctx, BuildChatML(g.generateSystemPrompt(), instruction), call)
		}
	}
	if err != nil {
		return "", err
	}

	line := NormalizeLine(raw)
	g.logger.Debug("llm attempt", "raw", raw, "normalized", line)
	return line, nil
}

func (g *Generator) chatSystemPrompt() string {
	if g.opts.SystemPrompt != "" {
		return g.opts.SystemPrompt
	}
	return DefaultChatSystemPrompt
}

func (g *Generator) generateSystemPrompt() string {
	if g.opts.SystemPrompt != "" {
		return g.opts.SystemPrompt
	}
	return DefaultGenerateSystemPrompt
}

// NormalizeLine turns a raw model response into a single-line candidate:
// surrounding whitespace and quotes stripped, a wrapping ``` fence removed
// when both ends are present, only the first line kept, and trailing
// comma/semicolon runs trimmed.
func NormalizeLine(raw string) string {
	line := strings.TrimSpace(raw)
	line = strings.Trim(line, `"`)
	line = strings.Trim(line, `'`)
	if strings.HasPrefix(line, "```") && strings.HasSuffix(line, "```") {
		line = strings.Trim(line, "`")
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	for strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		line = strings.TrimRight(line[:len(line)-1], " \t")
	}
	return line
}
