package provider

import (
	"encoding/json"
	"testing"

	"github.com/pallasite/prompt-forge/promptgen"
)

func TestGenerateSchema_StrictShotList(t *testing.T) {
	t.Parallel()

	raw := GenerateSchema[promptgen.ShotList]()

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("schema not valid JSON: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("type=%v", schema["type"])
	}
	if schema["additionalProperties"] != false {
		t.Fatalf("additionalProperties=%v, want false", schema["additionalProperties"])
	}

	props, _ := schema["properties"].(map[string]any)
	shots, _ := props["shots"].(map[string]any)
	if shots == nil || shots["type"] != "array" {
		t.Fatalf("shots property=%v", props["shots"])
	}

	items, _ := shots["items"].(map[string]any)
	if items == nil {
		t.Fatal("shots.items missing")
	}
	if items["additionalProperties"] != false {
		t.Fatalf("items.additionalProperties=%v, want false", items["additionalProperties"])
	}
	itemProps, _ := items["properties"].(map[string]any)
	for _, field := range []string{"name", "shot", "lens", "camera", "action", "continuity", "duration_sec"} {
		if _, ok := itemProps[field]; !ok {
			t.Fatalf("items.properties missing %q (have %v)", field, itemProps)
		}
	}

	required, _ := items["required"].([]any)
	if len(required) != len(itemProps) {
		t.Fatalf("required=%v, want every property required", required)
	}
}
