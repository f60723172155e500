package fileutils

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeLooseJSON unmarshals JSON produced by a language model, tolerating
// the usual wrapping noise: surrounding whitespace, a ``` code fence, or
// prose before/after the object.
func DecodeLooseJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if strings.HasPrefix(s, "```") {
		s = strings.Trim(s, "`")
		// A fence may carry a language tag on its opening line.
		if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
			s = s[i+1:]
		}
		s = strings.TrimSpace(s)
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	// Last resort: extract the first top-level JSON object from prose.
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON (len=%d): %w", end+1-start, err)
	}
	return nil
}
