package promptgen

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"A rainy rooftop at dawn", "a-rainy-rooftop-at-dawn"},
		{"  !!punctuation??  ", "punctuation"},
		{"MiXeD CaSe 123", "mixed-case-123"},
		{"---", "scenario"},
		{"", "scenario"},
	}
	for _, c := range cases {
		if got := Slugify(c.in, 0, false); got != c.want {
			t.Fatalf("Slugify(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugify_TruncateNoHash(t *testing.T) {
	t.Parallel()

	got := Slugify("one two three four five six", 12, false)
	if len(got) > 12 {
		t.Fatalf("len(%q)=%d, want <= 12", got, len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("trailing dash in %q", got)
	}
}

func TestSlugify_TruncateWithHash(t *testing.T) {
	t.Parallel()

	a := Slugify("a long scenario about a rainy rooftop at dawn, first version", 30, true)
	b := Slugify("a long scenario about a rainy rooftop at dawn, second version", 30, true)
	if a == b {
		t.Fatalf("distinct long inputs collapsed to the same slug %q", a)
	}
	for _, s := range []string{a, b} {
		dash := strings.LastIndexByte(s, '-')
		if dash < 0 || len(s)-dash-1 != 8 {
			t.Fatalf("slug %q missing 8-char hash suffix", s)
		}
	}
}

func TestSlugify_MultibyteTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("서울의밤비내리는골목", 3)

	got := Slugify(long, 7, false)
	if !utf8.ValidString(got) {
		t.Fatalf("invalid UTF-8 slug %q", got)
	}
	if want := "서울의밤비내리"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	for maxLen := 4; maxLen <= 30; maxLen++ {
		withHash := Slugify(long, maxLen, true)
		if !utf8.ValidString(withHash) {
			t.Fatalf("maxLen=%d produced invalid UTF-8 slug %q", maxLen, withHash)
		}
		dash := strings.LastIndexByte(withHash, '-')
		if dash < 0 || len(withHash)-dash-1 != 8 {
			t.Fatalf("maxLen=%d slug %q missing 8-char hash suffix", maxLen, withHash)
		}
	}
}

func TestSlugify_ShortMaxLenDoesNotPanic(t *testing.T) {
	t.Parallel()

	if got := Slugify("abcdefgh", 4, true); got == "" {
		t.Fatal("expected non-empty slug")
	}
}
