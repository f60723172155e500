package promptgen

import "strings"

// ExclusionSet holds normalized tag keys to filter against.
// Keys are produced by NormalizeKey, so lookups are case- and
// decoration-insensitive.
type ExclusionSet map[string]struct{}

// Add normalizes a single raw tag and inserts its key. Empty tags are ignored.
func (s ExclusionSet) Add(raw string) {
	key := NormalizeKey(raw)
	if key == "" {
		return
	}
	s[key] = struct{}{}
}

// AddText splits comma- or newline-separated text and adds every tag found.
func (s ExclusionSet) AddText(text string) {
	for _, part := range strings.Split(strings.ReplaceAll(text, "\n", ","), ",") {
		s.Add(part)
	}
}

// Has reports whether the tag's normalized key is in the set.
func (s ExclusionSet) Has(tag string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[NormalizeKey(tag)]
	return ok
}

// NormalizeKey returns the canonical comparison key for a tag: lowercase,
// weighting decoration ()[]{} removed, internal whitespace collapsed, ends
// trimmed. The key is used only for matching; the original tag text is what
// gets emitted.
func NormalizeKey(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '[', ']', '{', '}':
			return -1
		}
		return r
	}, t)
	return strings.Join(strings.Fields(t), " ")
}

// SplitTags splits a comma-separated prompt line into trimmed, non-empty tags.
func SplitTags(line string) []string {
	parts := strings.Split(line, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags joins tags back into a single prompt line.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// bannedAgeKeys are age-ambiguous tags that RewriteAgeTags drops outright.
var bannedAgeKeys = map[string]struct{}{
	"loli":     {},
	"teen":     {},
	"underage": {},
}

// RewriteAgeTags rewrites ambiguous age-coded tags to adult equivalents:
// exact "1girl" becomes "1woman", case-insensitive "girl" becomes "woman",
// and tags in the banned set are removed entirely. All other tags pass
// through unchanged.
func RewriteAgeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, banned := bannedAgeKeys[strings.ToLower(t)]; banned {
			continue
		}
		switch {
		case t == "1girl":
			out = append(out, "1woman")
		case strings.EqualFold(t, "girl"):
			out = append(out, "woman")
		default:
			out = append(out, t)
		}
	}
	return out
}

// SanitizeSeed prepares a seed line for generation: splits it into tags,
// optionally applies the age-tag rewrite, drops tags whose normalized key is
// excluded, and joins the remainder. The result is reused for every attempt
// of a slot.
func SanitizeSeed(seed string, safeAdultTags bool, excluded ExclusionSet) string {
	tags := SplitTags(seed)
	if safeAdultTags {
		tags = RewriteAgeTags(tags)
	}
	if len(excluded) > 0 {
		kept := tags[:0]
		for _, t := range tags {
			if !excluded.Has(t) {
				kept = append(kept, t)
			}
		}
		tags = kept
	}
	return JoinTags(tags)
}
