package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWrapped(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"with semicolon", `window.YTD.bookmark.part0 = [{"tweet":{"id_str":"1"}}];`, 1},
		{"without semicolon", `window.YTD.bookmark.part0 = [{"tweet":{"id_str":"1"}},{"tweet":{"id_str":"2"}}]`, 2},
		{"trailing whitespace", "window.X = [\n  {\"tweet\":{\"id_str\":\"1\"}}\n] ;\n\n", 1},
		{"no space around equals", `var x=[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Extract(tt.content, true)
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wrapped bool
		reason  string
	}{
		{"no assignment", `[{"tweet":{}}]`, true, ReasonUnknownWrapper},
		{"object assignment", `window.X = {"a": 1};`, true, ReasonUnknownWrapper},
		{"plain object", `{"tweet": {"id_str": "1"}}`, false, ReasonNotArray},
		{"plain null", `null`, false, ReasonNotArray},
		{"plain string", `"bookmarks"`, false, ReasonNotArray},
		{"truncated", `[{"tweet": {"id_str": "1"}`, false, ReasonInvalidJSON},
		{"empty", ``, false, ReasonInvalidJSON},
		{"wrapped garbage", `window.X = [oops];`, true, ReasonInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.content, tt.wrapped)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.True(t, IsFormatError(err))
		})
	}
}

func TestExtractKeepsDocumentOrder(t *testing.T) {
	entries, err := Extract(`[{"tweet":{"id_str":"b"}},{"tweet":{"id_str":"a"}},{"tweet":{"id_str":"c"}}]`, false)
	require.NoError(t, err)

	var ids []string
	for _, e := range entries {
		ids = append(ids, string(e.Tweet.IDStr))
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestExtractEntryLayouts(t *testing.T) {
	entries, err := Extract(`[
		{"tweet": {"id_str": "1"}},
		{"like": {"tweetId": "2", "fullText": "liked"}},
		{"id_str": "3", "full_text": "bare"},
		42
	]`, false)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "1", string(entries[0].source().IDStr))
	assert.Equal(t, "2", string(entries[1].source().IDStr))
	assert.Equal(t, "liked", entries[1].source().FullText)
	assert.Equal(t, "3", string(entries[2].source().IDStr))
	assert.Error(t, entries[3].err)
}
