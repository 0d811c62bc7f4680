// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// decoded parses s the way the extractor does.
func decoded(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newNormalizer(t *testing.T, identity types.IdentityStrategy) *Normalizer {
	t.Helper()
	n, err := New(identity, "", WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	return n
}

func TestItems_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []types.ExtractedItem
	}{
		{
			name:  "array",
			reply: `[{"question":"Q","answer":"A"}]`,
			want:  []types.ExtractedItem{{Question: "Q", Answer: "A"}},
		},
		{
			name:  "cards key",
			reply: `{"cards":[{"question":"Q1","answer":"A1","category":"Sport"}]}`,
			want:  []types.ExtractedItem{{Question: "Q1", Answer: "A1", Category: "Sport", HasCategory: true}},
		},
		{
			name:  "questions key",
			reply: `{"questions":[{"question":"Q2","answer":"A2"},{"question":"Q3"}]}`,
			want: []types.ExtractedItem{
				{Question: "Q2", Answer: "A2"},
				{Question: "Q3"},
			},
		},
		{
			name:  "cards key wins over questions",
			reply: `{"questions":[{"question":"late"}],"cards":[{"question":"early"}]}`,
			want:  []types.ExtractedItem{{Question: "early"}},
		},
		{
			name:  "single item object",
			reply: `{"question":"Lone","answer":"Wolf"}`,
			want:  []types.ExtractedItem{{Question: "Lone", Answer: "Wolf"}},
		},
		{
			name:  "scalars rendered as text",
			reply: `[{"question":"Year?","answer":1969,"category":null},{"question":"Flat?","answer":false}]`,
			want: []types.ExtractedItem{
				{Question: "Year?", Answer: "1969"},
				{Question: "Flat?", Answer: "false"},
			},
		},
		{
			name:  "fields neutralized",
			reply: `[{"question":"  Rome; or Paris?\nPick one ","answer":"Rome","category":" Geo "}]`,
			want:  []types.ExtractedItem{{Question: "Rome, or Paris? Pick one", Answer: "Rome", Category: "Geo", HasCategory: true}},
		},
		{
			name:  "empty array",
			reply: `[]`,
			want:  []types.ExtractedItem{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNormalizer(t, types.IdentityPerItem)
			got, err := n.Items(decoded(t, tt.reply))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItems_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"string", `"just text"`},
		{"number", `42`},
		{"null", `null`},
		{"object without items", `{"status":"ok"}`},
		{"array of strings", `["Q","A"]`},
		{"nested field", `[{"question":{"text":"Q"},"answer":"A"}]`},
		{"array field", `[{"question":"Q","answer":["A","B"]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNormalizer(t, types.IdentityPerItem)
			_, err := n.Items(decoded(t, tt.reply))
			assert.ErrorIs(t, err, ErrUnexpectedShape)
		})
	}
}

func TestNormalize_PerItemIdentity(t *testing.T) {
	n := newNormalizer(t, types.IdentityPerItem)

	recs, err := n.Normalize(decoded(t, `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2","category":"Art"}]`))
	require.NoError(t, err)

	assert.Equal(t, []types.Record{
		{ID: "id-1", Category: DefaultCategory, Question: "Q1", Answer: "A1"},
		{ID: "id-2", Category: "Art", Question: "Q2", Answer: "A2"},
	}, recs)
}

func TestNormalize_PerCardIdentity(t *testing.T) {
	n := newNormalizer(t, types.IdentityPerCard)
	reply := `[{"question":"Q1"},{"question":"Q2"},{"question":"Q3"}]`

	first, err := n.Normalize(decoded(t, reply))
	require.NoError(t, err)
	second, err := n.Normalize(decoded(t, reply))
	require.NoError(t, err)

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for _, r := range first {
		assert.Equal(t, first[0].ID, r.ID)
	}
	for _, r := range second {
		assert.Equal(t, second[0].ID, r.ID)
	}
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestNormalize_UUIDsByDefault(t *testing.T) {
	n, err := New(types.IdentityPerItem, "")
	require.NoError(t, err)

	recs, err := n.Normalize(decoded(t, `[{"question":"Q1"},{"question":"Q2"}]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Len(t, recs[0].ID, 36)
	assert.NotEqual(t, recs[0].ID, recs[1].ID)
}

func TestNormalize_ConfiguredDefaultCategory(t *testing.T) {
	n, err := New(types.IdentityPerItem, "General; Misc", WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)

	recs, err := n.Normalize(decoded(t, `[{"question":"Q","category":"   "}]`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "General, Misc", recs[0].Category)
}

func TestNormalize_EmptyReplyYieldsNoRecords(t *testing.T) {
	n := newNormalizer(t, types.IdentityPerCard)
	recs, err := n.Normalize(decoded(t, `{"cards":[]}`))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestNew_RejectsUnknownIdentity(t *testing.T) {
	_, err := New(types.IdentityStrategy("per-galaxy"), "")
	assert.Error(t, err)
}
