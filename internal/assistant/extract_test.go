package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "answer wins", payload: `{"answer":"A","raw":"R"}`, want: "A"},
		{name: "raw when answer empty", payload: `{"answer":"","raw":"R"}`, want: "R"},
		{name: "raw when answer missing", payload: `{"raw":"R"}`, want: "R"},
		{name: "plain string payload", payload: `"just text"`, want: "just text"},
		{name: "object dump", payload: `{"score":3}`, want: "{\n  \"score\": 3\n}"},
		{name: "non-string answer dumped", payload: `{"answer":7}`, want: "{\n  \"answer\": 7\n}"},
		{name: "array dump", payload: `[1,2]`, want: "[\n  1,\n  2\n]"},
		{name: "invalid json shown verbatim", payload: `oops`, want: "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(json.RawMessage(tt.payload)))
		})
	}
}
