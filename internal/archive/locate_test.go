package archive

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memIndex(names ...string) Index {
	idx := make(Index, 0, len(names))
	for _, name := range names {
		content := "content of " + name
		idx = append(idx, File{
			Name: name,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(content)), nil
			},
		})
	}
	return idx
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		wantPath    string
		wantWrapped bool
	}{
		{
			name:        "known path wins over index order",
			files:       []string{"other/my-bookmarks.js", "data/bookmark.js"},
			wantPath:    "data/bookmark.js",
			wantWrapped: true,
		},
		{
			name:        "known paths are tried in priority order",
			files:       []string{"bookmarks.js", "data/bookmarks.js"},
			wantPath:    "data/bookmarks.js",
			wantWrapped: true,
		},
		{
			name:        "likes are a fallback source",
			files:       []string{"data/tweets.js", "data/like.js"},
			wantPath:    "data/like.js",
			wantWrapped: true,
		},
		{
			name:        "bookmark export beats likes",
			files:       []string{"data/like.js", "bookmark.js"},
			wantPath:    "bookmark.js",
			wantWrapped: true,
		},
		{
			name:        "name sniffing is case-insensitive",
			files:       []string{"data/tweets.js", "twitter-2024/data/Bookmarks-Part1.JS"},
			wantPath:    "twitter-2024/data/Bookmarks-Part1.JS",
			wantWrapped: true,
		},
		{
			name:        "script files are preferred to json",
			files:       []string{"export/bookmarks.json", "export/bookmarks.js"},
			wantPath:    "export/bookmarks.js",
			wantWrapped: true,
		},
		{
			name:        "json fallback",
			files:       []string{"readme.txt", "export/bookmarks.json"},
			wantPath:    "export/bookmarks.json",
			wantWrapped: false,
		},
		{
			name:        "first sniffed match in index order",
			files:       []string{"b/bookmark-2.js", "a/bookmark-1.js"},
			wantPath:    "b/bookmark-2.js",
			wantWrapped: true,
		},
		{
			name:        "windows separators",
			files:       []string{"data\\bookmarks.js"},
			wantPath:    "data\\bookmarks.js",
			wantWrapped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Locate(memIndex(tt.files...))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, loc.Path)
			assert.Equal(t, tt.wantWrapped, loc.Wrapped)
			assert.Equal(t, "content of "+tt.wantPath, string(loc.Content))
		})
	}
}

func TestLocateNotFound(t *testing.T) {
	for _, files := range [][]string{
		nil,
		{"data/tweets.js", "data/account.js"},
		{"bookmarks.txt", "bookmarks.csv"},
	} {
		_, err := Locate(memIndex(files...))
		var fe *FormatError
		require.ErrorAs(t, err, &fe, "files %v", files)
		assert.Equal(t, ReasonNoBookmarkData, fe.Reason)
	}
}

func TestLocateUnreadableMember(t *testing.T) {
	idx := Index{{
		Name: "data/bookmarks.js",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("checksum error") },
	}}

	_, err := Locate(idx)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ReasonUnreadableMember, fe.Reason)
	assert.Contains(t, err.Error(), "checksum error")
}
