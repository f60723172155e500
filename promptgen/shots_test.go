package promptgen

import (
	"strings"
	"testing"
)

func TestShotPreset(t *testing.T) {
	t.Parallel()

	shots := ShotPreset("storyboard")
	if len(shots) != 6 {
		t.Fatalf("storyboard preset has %d shots, want 6", len(shots))
	}
	if shots[0].Key != "01_establishing" || shots[5].Key != "06_detail" {
		t.Fatalf("unexpected keys %q .. %q", shots[0].Key, shots[5].Key)
	}

	fallback := ShotPreset("no-such-preset")
	if len(fallback) != 1 || fallback[0].Key != "01_scene" {
		t.Fatalf("fallback preset=%v", fallback)
	}
}

func TestExtendShots(t *testing.T) {
	t.Parallel()

	base := ShotPreset("storyboard")

	if got := ExtendShots(base, 0); len(got) != len(base) {
		t.Fatalf("need=0 should keep the base list, got %d", len(got))
	}
	if got := ExtendShots(base, 3); len(got) != 3 || got[2].Key != "03_medium" {
		t.Fatalf("trimmed=%v", got)
	}

	got := ExtendShots(base, 8)
	if len(got) != 8 {
		t.Fatalf("extended to %d shots, want 8", len(got))
	}
	if got[6].Key != "07_seq" || got[7].Key != "08_seq" {
		t.Fatalf("extension keys %q, %q", got[6].Key, got[7].Key)
	}
	if got[6].Tokens != base[0].Tokens {
		t.Fatal("extension should cycle base tokens")
	}
}

func TestParseShotList(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Shot 1: Rooftop Reveal | duration: 3 | shot: wide establishing | lens: 24mm | camera: slow push-in | subject/action: woman steps to the ledge | continuity: rain streaks",
		"",
		"Shot 2: Hands | duration: 2 | shot: macro | lens: 100mm | hands grip the railing",
	}
	shots := ParseShotList(lines)
	if len(shots) != 2 {
		t.Fatalf("parsed %d shots, want 2", len(shots))
	}

	if shots[0].Key != "01_rooftop_reveal" {
		t.Fatalf("key=%q", shots[0].Key)
	}
	if strings.Contains(shots[0].Tokens, "duration") {
		t.Fatalf("duration leaked into tokens: %q", shots[0].Tokens)
	}
	if strings.Contains(shots[0].Tokens, "lens:") {
		t.Fatalf("label not stripped: %q", shots[0].Tokens)
	}
	for _, want := range []string{"wide establishing", "24mm", "slow push-in", "woman steps to the ledge", "rain streaks"} {
		if !strings.Contains(shots[0].Tokens, want) {
			t.Fatalf("tokens %q missing %q", shots[0].Tokens, want)
		}
	}

	// Unlabeled trailing section is kept verbatim.
	if !strings.Contains(shots[1].Tokens, "hands grip the railing") {
		t.Fatalf("tokens=%q", shots[1].Tokens)
	}
	if shots[1].Key != "02_hands" {
		t.Fatalf("key=%q", shots[1].Key)
	}
}

func TestParseShotList_MissingName(t *testing.T) {
	t.Parallel()

	shots := ParseShotList([]string{"wide shot of a street market"})
	if len(shots) != 1 {
		t.Fatalf("parsed %d shots", len(shots))
	}
	if shots[0].Key != "01_shot_1" {
		t.Fatalf("key=%q", shots[0].Key)
	}
}

func TestShotPlanTokens(t *testing.T) {
	t.Parallel()

	p := ShotPlan{
		Name:        "Rooftop Reveal",
		ShotType:    "wide establishing",
		Lens:        "24mm",
		Camera:      "",
		Action:      "woman steps to the ledge",
		Continuity:  "rain streaks",
		DurationSec: 3,
	}
	got := p.Tokens()
	want := "wide establishing, 24mm, woman steps to the ledge, rain streaks"
	if got != want {
		t.Fatalf("Tokens()=%q, want %q", got, want)
	}
}

func TestShotsFromPlans(t *testing.T) {
	t.Parallel()

	shots := ShotsFromPlans([]ShotPlan{
		{Name: "Rooftop Reveal", ShotType: "wide"},
		{ShotType: "macro"},
	})
	if len(shots) != 2 {
		t.Fatalf("got %d shots", len(shots))
	}
	if shots[0].Key != "01_rooftop_reveal" {
		t.Fatalf("key=%q", shots[0].Key)
	}
	if shots[1].Key != "02_shot_2" {
		t.Fatalf("key=%q", shots[1].Key)
	}
}
