package archive

import (
	"slices"
	"time"

	"github.com/araddon/dateparse"

	"github.com/xaenox/bookmark-lens/internal/models"
)

const (
	unknownUserID   = "unknown"
	unknownUserName = "Unknown User"
	unknownHandle   = "unknown"
)

// isoMillis matches the timestamp shape of JavaScript's Date.toISOString
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Normalize maps one entry to a Post. Entries without a usable id return
// ErrMissingID; entries that failed to decode return their decode error.
//
// A missing created_at is replaced by now. This mislabels recency for such
// entries but matches how exports have always been read.
func Normalize(e RawEntry, now time.Time) (models.Post, error) {
	if e.err != nil {
		return models.Post{}, e.err
	}

	t := e.source()
	id := firstNonEmpty(string(t.IDStr), string(t.ID), string(e.TweetID))
	if id == "" {
		return models.Post{}, ErrMissingID
	}

	createdAt := string(t.CreatedAt)
	if createdAt == "" {
		createdAt = now.UTC().Format(isoMillis)
	}

	post := models.Post{
		ID:                  id,
		Text:                firstNonEmpty(t.FullText, t.Text),
		CreatedAt:           createdAt,
		Author:              normalizeUser(t.User),
		FavoriteCount:       t.FavoriteCount.ptr(),
		RetweetCount:        t.RetweetCount.ptr(),
		ReplyCount:          t.ReplyCount.ptr(),
		InReplyToPostID:     string(t.InReplyToStatusIDStr),
		InReplyToScreenName: t.InReplyToScreenName,
		IsQuote:             t.IsQuoteStatus.ptr(),
	}

	if t.ExtendedEntities != nil && t.ExtendedEntities.Media != nil {
		post.Media = make([]models.MediaItem, len(t.ExtendedEntities.Media))
		for i, m := range t.ExtendedEntities.Media {
			post.Media[i] = models.MediaItem{
				Kind:       models.MediaKind(m.Type),
				URL:        m.MediaURLHTTPS,
				PreviewURL: m.MediaURLHTTPS,
			}
		}
	}

	if t.Entities != nil && t.Entities.URLs != nil {
		post.URLs = make([]models.URLEntity, len(t.Entities.URLs))
		for i, u := range t.Entities.URLs {
			post.URLs[i] = models.URLEntity{
				URL:         u.URL,
				ExpandedURL: u.ExpandedURL,
				DisplayURL:  u.DisplayURL,
			}
		}
	}

	return post, nil
}

func normalizeUser(u *RawUser) models.User {
	if u == nil {
		return models.User{ID: unknownUserID, Name: unknownUserName, ScreenName: unknownHandle}
	}
	return models.User{
		ID:              firstNonEmpty(string(u.IDStr), unknownUserID),
		Name:            firstNonEmpty(u.Name, unknownUserName),
		ScreenName:      firstNonEmpty(u.ScreenName, unknownHandle),
		ProfileImageURL: u.ProfileImageURLHTTPS,
		Verified:        u.Verified.ptr(),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var timestampLayouts = []string{
	time.RubyDate, // the archive's own "Wed Oct 10 20:19:24 +0000 2018"
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp reads a created_at value. ok is false when no known layout
// fits.
func ParseTimestamp(s string) (at time.Time, ok bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SortNewestFirst orders bookmarks by post time, newest first, with
// unparseable times last. The sort is stable, so equal timestamps keep their
// import order and re-sorting is a no-op.
func SortNewestFirst(bookmarks []models.Bookmark) {
	type dated struct {
		bookmark models.Bookmark
		at       time.Time
		ok       bool
	}

	ds := make([]dated, len(bookmarks))
	for i, b := range bookmarks {
		at, ok := ParseTimestamp(b.Post.CreatedAt)
		ds[i] = dated{bookmark: b, at: at, ok: ok}
	}

	slices.SortStableFunc(ds, func(a, b dated) int {
		switch {
		case a.ok != b.ok:
			if a.ok {
				return -1
			}
			return 1
		case !a.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	for i := range ds {
		bookmarks[i] = ds[i].bookmark
	}
}
