package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElements(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{
			name:     "empty string degrades to empty collection",
			content:  "",
			expected: 0,
		},
		{
			name:     "empty array",
			content:  "[]",
			expected: 0,
		},
		{
			name:     "malformed JSON degrades to empty collection",
			content:  `{"not": "an array"`,
			expected: 0,
		},
		{
			name:     "wrong JSON shape degrades to empty collection",
			content:  `{"id":"x"}`,
			expected: 0,
		},
		{
			name:     "valid collection",
			content:  `[{"id":"a","kind":"text","x":10,"y":20},{"id":"b","kind":"shape"}]`,
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := ParseElements(tt.content)
			assert.NotNil(t, elements)
			assert.Len(t, elements, tt.expected)
		})
	}
}

func TestParseElements_RoundTrip(t *testing.T) {
	original := []CanvasElement{
		{ID: "a", Kind: KindText, X: 10, Y: 20, Width: 100, Height: 50, Content: "hello"},
		{ID: "b", Kind: KindRectangle, Rotation: 45, Style: map[string]interface{}{"fill": "#ff0000"}},
	}

	parsed := ParseElements(MarshalElements(original))
	require.Len(t, parsed, 2)
	assert.Equal(t, "a", parsed[0].ID)
	assert.Equal(t, KindText, parsed[0].Kind)
	assert.Equal(t, "hello", parsed[0].Content)
	assert.Equal(t, 45.0, parsed[1].Rotation)
	assert.Equal(t, "#ff0000", parsed[1].Style["fill"])
}

func TestCanvasElement_Clone_IsDeep(t *testing.T) {
	original := CanvasElement{
		ID:    "a",
		Kind:  KindRectangle,
		Style: map[string]interface{}{"fill": "#ff0000"},
	}

	copied := original.Clone()
	copied.Style["fill"] = "#00ff00"

	assert.Equal(t, "#ff0000", original.Style["fill"])
}

func TestCloneElements_IsIndependent(t *testing.T) {
	original := []CanvasElement{{ID: "a", X: 1}, {ID: "b", X: 2}}

	copied := CloneElements(original)
	copied[0].X = 99

	assert.Equal(t, 1.0, original[0].X)
}

func TestDecodePollPayload(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantOptions int
		wantTotal   int
	}{
		{
			name:        "empty content yields default payload",
			content:     "",
			wantOptions: 2,
			wantTotal:   0,
		},
		{
			name:        "malformed content yields default payload",
			content:     `{"question":`,
			wantOptions: 2,
			wantTotal:   0,
		},
		{
			name:        "valid payload",
			content:     `{"question":"Q?","options":[{"id":"1","votes":3}],"totalVotes":3}`,
			wantOptions: 1,
			wantTotal:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := DecodePollPayload(tt.content)
			assert.Len(t, payload.Options, tt.wantOptions)
			assert.Equal(t, tt.wantTotal, payload.TotalVotes)
		})
	}
}

func TestDefaultPollPayload_StartsWithZeroVotes(t *testing.T) {
	payload := DefaultPollPayload()

	require.Len(t, payload.Options, 2)
	for _, opt := range payload.Options {
		assert.Zero(t, opt.Votes)
	}
	assert.Zero(t, payload.TotalVotes)
}
