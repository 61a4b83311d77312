package assistant

import (
	"encoding/json"
)

// ExtractText picks the text to show for a backend answer. In order: a
// non-empty "answer" field, a non-empty "raw" field, the payload itself
// when it is a JSON string, and finally an indented dump of the payload.
func ExtractText(payload json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}

	switch val := v.(type) {
	case map[string]interface{}:
		if s, ok := val["answer"].(string); ok && s != "" {
			return s
		}
		if s, ok := val["raw"].(string); ok && s != "" {
			return s
		}
	case string:
		return val
	}

	dump, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(payload)
	}
	return string(dump)
}
