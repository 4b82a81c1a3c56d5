package archive

import (
	"archive/zip"
	"io"
	"strings"
)

// knownPaths are checked in order before falling back to name sniffing.
// The like exports come last and only stand in when no bookmark file exists.
var knownPaths = []string{
	"data/bookmarks.js",
	"data/bookmark.js",
	"bookmarks.js",
	"bookmark.js",
	"data/like.js",
	"data/likes.js",
}

const (
	wrappedExt = ".js"
	plainExt   = ".json"
)

// File is one member of a bundle
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Index lists bundle members in bundle order
type Index []File

// ZipIndex builds an Index from the regular files of a zip archive
func ZipIndex(zr *zip.Reader) Index {
	idx := make(Index, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		idx = append(idx, File{Name: f.Name, Open: f.Open})
	}
	return idx
}

// Located is the bookmark payload chosen from a bundle
type Located struct {
	Path    string
	Content []byte
	Wrapped bool
}

// Locate returns the first bookmark payload found in idx: an exact known
// path, then any member whose name contains "bookmark" and ends in .js, then
// the same for .json.
func Locate(idx Index) (*Located, error) {
	byPath := make(map[string]File, len(idx))
	for _, f := range idx {
		p := cleanPath(f.Name)
		if _, seen := byPath[p]; !seen {
			byPath[p] = f
		}
	}

	for _, p := range knownPaths {
		if f, ok := byPath[p]; ok {
			return load(f)
		}
	}

	for _, ext := range []string{wrappedExt, plainExt} {
		if f, ok := sniff(idx, ext); ok {
			return load(f)
		}
	}

	return nil, &FormatError{Reason: ReasonNoBookmarkData}
}

func sniff(idx Index, ext string) (File, bool) {
	for _, f := range idx {
		name := strings.ToLower(cleanPath(f.Name))
		if strings.Contains(name, "bookmark") && strings.HasSuffix(name, ext) {
			return f, true
		}
	}
	return File{}, false
}

func load(f File) (*Located, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &FormatError{Reason: ReasonUnreadableMember, Err: err}
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, &FormatError{Reason: ReasonUnreadableMember, Err: err}
	}

	return &Located{
		Path:    f.Name,
		Content: content,
		Wrapped: isWrappedName(f.Name),
	}, nil
}

// cleanPath normalizes separators written by Windows archivers
func cleanPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(name, "./")
}

func isWrappedName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), wrappedExt)
}
