package promptgen

import (
	"fmt"
	"strings"
)

// DefaultChatSystemPrompt is the system message used for /api/chat calls when
// the caller does not override it.
const DefaultChatSystemPrompt = "You generate a single-line comma-separated list of positive tags " +
	"for image generation models. Output exactly one line, no quotes."

// DefaultGenerateSystemPrompt is used when wrapping a generate-mode call in
// chat markup for the fallback attempt stage.
const DefaultGenerateSystemPrompt = "You are a prompt generator that outputs exactly one line: " +
	"a comma-separated list of positive tags for image generation."

// BuildVariantInstruction embeds the sanitized seed in the fixed style
// directive sent for every variant attempt.
func BuildVariantInstruction(seed string) string {
	return "You are a prompt generator for composing POSITIVE tags for image models " +
		"(e.g., Stable Diffusion).\n" +
		"Output exactly ONE line: a comma-separated list of tokens, no quotes, " +
		"no numbering, no extra lines. Keep the overall style, theme, and aesthetics " +
		"similar to the given seed. Avoid illegal/harmful content. Do NOT output a " +
		"negative prompt. If the seed contains '1girl' or 'girl', treat the subject as an " +
		"adult woman.\n\n" +
		"Seed: " + seed + "\n" +
		"One new similar positive prompt line:"
}

// BuildChatML wraps a system/user pair in ChatML markup. Base chat models
// served over /api/generate often need the explicit tokens that /api/chat
// would otherwise add.
func BuildChatML(system, user string) string {
	var b strings.Builder
	b.WriteString("<|im_start|>system\n")
	b.WriteString(strings.TrimSpace(system))
	b.WriteString("\n<|im_end|>\n")
	b.WriteString("<|im_start|>user\n")
	b.WriteString(strings.TrimSpace(user))
	b.WriteString("\n<|im_end|>\n")
	b.WriteString("<|im_start|>assistant\n")
	return b.String()
}

// BuildStoryPrompt returns the system/user pair that asks the model for a
// short scenario including every topic. language is "en" or "ko"; style is
// "logline" or "vignette".
func BuildStoryPrompt(topics []string, sentences int, language, style string) (system, user string) {
	langLabel := "Korean"
	if strings.HasPrefix(strings.ToLower(language), "en") {
		langLabel = "English"
	}
	styleHint := "short cinematic vignette"
	if style == "logline" {
		styleHint = "cinematic logline"
	}
	system = "You are a creative scenarist who writes concise, visual-first scenarios. " +
		"Always include the provided topics explicitly. Avoid meta comments and lists."
	user = fmt.Sprintf("Write exactly %d sentences in %s as a %s. Include these topics: %s. "+
		"Keep it concrete and evocative; no dialogue unless essential. Output one paragraph only.",
		sentences, langLabel, styleHint, joinNonEmpty(topics))
	return system, user
}

// BuildShotListPrompt returns the system/user pair that asks for a shot list
// of exactly numCuts lines using " | " field separators.
func BuildShotListPrompt(scenario string, topics []string, numCuts, durationSec int, language string) (system, user string) {
	langLabel := "Korean"
	if strings.HasPrefix(strings.ToLower(language), "en") {
		langLabel = "English"
	}
	system = "You are a cinematographer planning a tightly-edited micro video. " +
		"Produce a coherent shot list with temporal continuity and visual progression. " +
		"Use concise film language."
	tops := joinNonEmpty(topics)
	if tops == "" {
		tops = "(none)"
	}
	user = fmt.Sprintf("Scenario (context): %s\nTopics: %s\n"+
		"Total duration: ~%d seconds. Shots: exactly %d.\n"+
		"Write in %s. Output exactly %d lines. "+
		"Each line format: Shot <#>: <short-name> | duration: <sec> | shot: <type/angle> | lens: <focal> | "+
		"camera: <movement/height> | subject/action: <...> | continuity: <anchor>. "+
		"Do not add extra commentary or numbering outside the specified format.",
		strings.TrimSpace(scenario), tops, durationSec, numCuts, langLabel, numCuts)
	return system, user
}

func joinNonEmpty(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}
