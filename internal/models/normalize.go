package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NormalizeTerm prepares a category or city for exact-match comparison.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FlexString accepts either a JSON string or a JSON number. The
// structuring model emits quantities both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(f))), nil
}
