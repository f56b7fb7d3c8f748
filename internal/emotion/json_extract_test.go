package emotion_test

import (
	"testing"

	"github.com/spacesedan/moodflow/internal/emotion"
	"github.com/stretchr/testify/require"
)

func TestExtractFirstJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare object", in: `{"emotion":"calm"}`, want: `{"emotion":"calm"}`},
		{name: "surrounded by prose", in: "Here you go:\n```json\n{\"a\":1}\n```\nThanks", want: `{"a":1}`},
		{name: "nested objects", in: `x {"a":{"b":{}}} y {"c":2}`, want: `{"a":{"b":{}}}`},
		{name: "braces inside strings", in: `{"note":"a } and { here","n":1}`, want: `{"note":"a } and { here","n":1}`},
		{name: "escaped quote in string", in: `{"q":"say \"}\" now"}`, want: `{"q":"say \"}\" now"}`},
		{name: "unclosed then valid", in: `{ oops {"a":1}`, want: `{"a":1}`},
		{name: "no braces", in: "I can't answer that.", wantErr: true},
		{name: "only closing brace", in: "} nope", wantErr: true},
		{name: "never closes", in: `{"a": {"b": 1}`, want: `{"b": 1}`},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := emotion.ExtractFirstJSONObject(tt.in)
			if tt.wantErr {
				req.ErrorIs(err, emotion.ErrNoJSONObject)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}
