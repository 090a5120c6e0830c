package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"bid2/internal/models"
)

var fencePattern = regexp.MustCompile("(?i)```json|```")

// stripFences removes markdown code fences the model sometimes wraps
// its output in despite instructions not to.
func stripFences(s string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}

// extractJSON parses raw model output into v. It tries a direct parse
// first, then recovers by slicing the substring between the first '{'
// and the last '}' and reparsing. Both failing maps to
// ErrUnparseableResponse.
func extractJSON(raw string, v any) error {
	cleaned := stripFences(raw)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first == -1 || last <= first {
		return fmt.Errorf("%w: no json object found", models.ErrUnparseableResponse)
	}

	if err := json.Unmarshal([]byte(cleaned[first:last+1]), v); err != nil {
		return fmt.Errorf("%w: %w", models.ErrUnparseableResponse, err)
	}

	return nil
}
