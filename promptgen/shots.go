package promptgen

import (
	"fmt"
	"strings"
)

// Shot is one planned cut: a filename-safe key plus the comma-separated hint
// tokens appended to the scenario seed for that cut.
type Shot struct {
	Key    string
	Tokens string
}

// ShotPreset returns the built-in shot list for a preset name. Unknown names
// fall back to a single generic shot.
func ShotPreset(name string) []Shot {
	switch strings.ToLower(name) {
	case "storyboard", "default", "std":
		return []Shot{
			{Key: "01_establishing", Tokens: "establishing shot, wide angle, high vantage, environment context, 24mm lens, rule of thirds, cinematic lighting"},
			{Key: "02_wide", Tokens: "full-body wide shot, 35mm lens, spatial context, balanced composition, natural pose"},
			{Key: "03_medium", Tokens: "medium shot (waist-up), 50mm lens, conversational framing, subtle background depth"},
			{Key: "04_closeup", Tokens: "tight close-up, 85mm lens, shallow depth of field, skin texture, catchlight"},
			{Key: "05_over_shoulder", Tokens: "over-the-shoulder shot, subject-of-interest in focus, narrative framing, eye-level"},
			{Key: "06_detail", Tokens: "macro detail, 100mm macro, texture focus, intricate material, soft bokeh"},
		}
	}
	return []Shot{{Key: "01_scene", Tokens: "balanced composition, cinematic lighting, realistic detail"}}
}

// ExtendShots trims or extends a shot list to exactly need entries. Extension
// cycles the base presets under sequential keys so the sequence keeps flowing.
func ExtendShots(base []Shot, need int) []Shot {
	if need <= 0 || need == len(base) {
		return base
	}
	if need <= len(base) {
		return base[:need]
	}
	out := append([]Shot(nil), base...)
	idx := len(base) + 1
	for i := 0; len(out) < need; i++ {
		out = append(out, Shot{Key: fmt.Sprintf("%02d_seq", idx), Tokens: base[i%len(base)].Tokens})
		idx++
	}
	return out
}

// shotListFieldLabels are the " | " section labels whose values are kept when
// parsing a text shot list. Duration is planning metadata, not prompt content.
var shotListFieldLabels = map[string]struct{}{
	"shot":           {},
	"lens":           {},
	"camera":         {},
	"subject/action": {},
	"continuity":     {},
}

// ParseShotList parses model-written shot-list lines of the form
// "Shot 1: name | duration: 2 | shot: ... | lens: ..." into Shots. Blank
// lines are skipped; unlabeled sections are kept verbatim.
func ParseShotList(lines []string) []Shot {
	var shots []Shot
	idx := 1
	for _, raw := range lines {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		parts := strings.Split(text, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		short := ""
		headerConsumed := false
		if len(parts) > 0 {
			if _, after, ok := strings.Cut(parts[0], ":"); ok {
				short = strings.TrimSpace(after)
				headerConsumed = true
			}
		}
		if short == "" {
			short = fmt.Sprintf("shot-%d", idx)
		}
		shortSlug := strings.ReplaceAll(Slugify(short, 20, false), "-", "_")

		var keep []string
		for i, sec := range parts {
			if i == 0 && headerConsumed {
				continue
			}
			lower := strings.ToLower(sec)
			if strings.HasPrefix(lower, "duration") {
				continue
			}
			if label, value, ok := strings.Cut(sec, ":"); ok {
				if _, known := shotListFieldLabels[strings.ToLower(strings.TrimSpace(label))]; known {
					if v := strings.TrimSpace(value); v != "" {
						keep = append(keep, v)
					}
					continue
				}
			}
			if sec != "" {
				keep = append(keep, sec)
			}
		}

		shots = append(shots, Shot{
			Key:    fmt.Sprintf("%02d_%s", idx, shortSlug),
			Tokens: strings.Join(keep, ", "),
		})
		idx++
	}
	return shots
}

// ShotPlan is the structured shot-list element requested from providers that
// support schema-constrained output. jsonschema tags mark every field
// required so strict providers fill the whole object.
type ShotPlan struct {
	Name        string  `json:"name" jsonschema:"description=Short shot name (2-4 words)"`
	ShotType    string  `json:"shot" jsonschema:"description=Shot type and angle"`
	Lens        string  `json:"lens" jsonschema:"description=Focal length"`
	Camera      string  `json:"camera" jsonschema:"description=Camera movement and height"`
	Action      string  `json:"action" jsonschema:"description=Subject and action"`
	Continuity  string  `json:"continuity" jsonschema:"description=Continuity anchor to the previous shot"`
	DurationSec float64 `json:"duration_sec" jsonschema:"description=Approximate duration in seconds"`
}

// ShotList is the top-level structured shot-list response.
type ShotList struct {
	Shots []ShotPlan `json:"shots"`
}

// Tokens flattens a plan into the comma-separated hint bundle used as prompt
// content. Duration is omitted, matching the text-format parser.
func (p ShotPlan) Tokens() string {
	fields := []string{p.ShotType, p.Lens, p.Camera, p.Action, p.Continuity}
	kept := fields[:0]
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// ShotsFromPlans converts a structured shot list into ordered Shots.
func ShotsFromPlans(plans []ShotPlan) []Shot {
	shots := make([]Shot, 0, len(plans))
	for i, p := range plans {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = fmt.Sprintf("shot-%d", i+1)
		}
		key := fmt.Sprintf("%02d_%s", i+1, strings.ReplaceAll(Slugify(name, 20, false), "-", "_"))
		shots = append(shots, Shot{Key: key, Tokens: p.Tokens()})
	}
	return shots
}
