package promptgen

import "fmt"

// ExcludeMode selects how candidates that contain excluded tags are handled.
type ExcludeMode string

const (
	// ExcludeDrop removes excluded tags and keeps the rest; a candidate that
	// ends up empty counts as a failed attempt.
	ExcludeDrop ExcludeMode = "drop"
	// ExcludeReject discards the whole candidate when any tag is excluded.
	ExcludeReject ExcludeMode = "reject"
)

// ParseExcludeMode validates a user-supplied mode string.
func ParseExcludeMode(s string) (ExcludeMode, error) {
	switch ExcludeMode(s) {
	case ExcludeDrop, ExcludeReject:
		return ExcludeMode(s), nil
	}
	return "", fmt.Errorf("invalid exclude mode %q (want %q or %q)", s, ExcludeDrop, ExcludeReject)
}

// FilterTags applies the exclusion policy to a candidate tag sequence.
// It returns the surviving tags and whether the candidate is accepted.
// With an empty ExclusionSet every non-empty candidate is accepted unchanged.
func FilterTags(tags []string, excluded ExclusionSet, mode ExcludeMode) ([]string, bool) {
	if len(excluded) == 0 {
		return tags, len(tags) > 0
	}
	switch mode {
	case ExcludeReject:
		for _, t := range tags {
			if excluded.Has(t) {
				return nil, false
			}
		}
		return tags, len(tags) > 0
	default: // drop
		kept := make([]string, 0, len(tags))
		for _, t := range tags {
			if excluded.Has(t) {
				continue
			}
			kept = append(kept, t)
		}
		return kept, len(kept) > 0
	}
}
