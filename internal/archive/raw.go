package archive

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// RawEntry is one element of the exported array. Every field is optional and
// names differ across export versions; nothing past Normalize sees this shape.
//
// Three layouts are accepted: {"tweet": {...}}, {"like": {...}} and a bare
// tweet object. Members whose JSON type does not fit are treated as absent
// and listed by InvalidFields.
type RawEntry struct {
	Tweet   *RawTweet
	Like    *RawLike
	TweetID flexString
	Bare    RawTweet

	invalid []string
	err     error
}

func (e *RawEntry) UnmarshalJSON(b []byte) error {
	invalid, err := decodeObject(b, map[string]any{
		"tweet":   &e.Tweet,
		"like":    &e.Like,
		"tweetId": &e.TweetID,
	})
	if err != nil {
		return err
	}
	if e.Tweet != nil {
		invalid = append(invalid, prefixed("tweet", e.Tweet.invalid)...)
	}
	if e.Like != nil {
		invalid = append(invalid, prefixed("like", e.Like.invalid)...)
	}
	if e.Tweet == nil && e.Like == nil {
		if err := e.Bare.UnmarshalJSON(b); err != nil {
			return err
		}
		invalid = append(invalid, e.Bare.invalid...)
	}
	slices.Sort(invalid)
	e.invalid = invalid
	return nil
}

// InvalidFields names the members that were ignored for having the wrong
// JSON type, as dotted paths such as "tweet.user".
func (e *RawEntry) InvalidFields() []string {
	return e.invalid
}

type RawTweet struct {
	IDStr                flexString
	ID                   flexString
	FullText             string
	Text                 string
	CreatedAt            flexString
	User                 *RawUser
	FavoriteCount        flexInt
	RetweetCount         flexInt
	ReplyCount           flexInt
	ExtendedEntities     *RawExtEntities
	Entities             *RawEntities
	InReplyToStatusIDStr flexString
	InReplyToScreenName  string
	IsQuoteStatus        flexBool

	invalid []string
}

func (t *RawTweet) UnmarshalJSON(b []byte) error {
	invalid, err := decodeObject(b, map[string]any{
		"id_str":                    &t.IDStr,
		"id":                        &t.ID,
		"full_text":                 &t.FullText,
		"text":                      &t.Text,
		"created_at":                &t.CreatedAt,
		"user":                      &t.User,
		"favorite_count":            &t.FavoriteCount,
		"retweet_count":             &t.RetweetCount,
		"reply_count":               &t.ReplyCount,
		"extended_entities":         &t.ExtendedEntities,
		"entities":                  &t.Entities,
		"in_reply_to_status_id_str": &t.InReplyToStatusIDStr,
		"in_reply_to_screen_name":   &t.InReplyToScreenName,
		"is_quote_status":           &t.IsQuoteStatus,
	})
	if err != nil {
		return err
	}
	if t.User != nil {
		invalid = append(invalid, prefixed("user", t.User.invalid)...)
	}
	if t.ExtendedEntities != nil {
		invalid = append(invalid, prefixed("extended_entities", t.ExtendedEntities.invalid)...)
	}
	if t.Entities != nil {
		invalid = append(invalid, prefixed("entities", t.Entities.invalid)...)
	}
	t.invalid = invalid
	return nil
}

type RawUser struct {
	IDStr                flexString
	Name                 string
	ScreenName           string
	ProfileImageURLHTTPS string
	Verified             flexBool

	invalid []string
}

func (u *RawUser) UnmarshalJSON(b []byte) error {
	invalid, err := decodeObject(b, map[string]any{
		"id_str":                  &u.IDStr,
		"name":                    &u.Name,
		"screen_name":             &u.ScreenName,
		"profile_image_url_https": &u.ProfileImageURLHTTPS,
		"verified":                &u.Verified,
	})
	u.invalid = invalid
	return err
}

type RawExtEntities struct {
	Media []RawMedia

	invalid []string
}

func (x *RawExtEntities) UnmarshalJSON(b []byte) error {
	invalid, err := decodeObject(b, map[string]any{"media": &x.Media})
	x.invalid = invalid
	return err
}

type RawMedia struct {
	Type          string
	MediaURLHTTPS string
}

func (m *RawMedia) UnmarshalJSON(b []byte) error {
	_, err := decodeObject(b, map[string]any{
		"type":            &m.Type,
		"media_url_https": &m.MediaURLHTTPS,
	})
	return err
}

type RawEntities struct {
	URLs []RawURL

	invalid []string
}

func (x *RawEntities) UnmarshalJSON(b []byte) error {
	invalid, err := decodeObject(b, map[string]any{"urls": &x.URLs})
	x.invalid = invalid
	return err
}

type RawURL struct {
	URL         string
	ExpandedURL string
	DisplayURL  string
}

func (u *RawURL) UnmarshalJSON(b []byte) error {
	_, err := decodeObject(b, map[string]any{
		"url":          &u.URL,
		"expanded_url": &u.ExpandedURL,
		"display_url":  &u.DisplayURL,
	})
	return err
}

// RawLike is the entry layout of like.js exports
type RawLike struct {
	TweetID     flexString
	FullText    string
	ExpandedURL string

	invalid []string
}

func (l *RawLike) UnmarshalJSON(b []byte) error {
	invalid, err := decodeObject(b, map[string]any{
		"tweetId":     &l.TweetID,
		"fullText":    &l.FullText,
		"expandedUrl": &l.ExpandedURL,
	})
	l.invalid = invalid
	return err
}

// decodeObject decodes the members of a JSON object into targets one at a
// time. A member that does not fit its target is reset to the zero value and
// reported by name; only a value that is not an object at all is an error.
func decodeObject(b []byte, targets map[string]any) ([]string, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil {
		return nil, err
	}

	var invalid []string
	for name, target := range targets {
		raw, ok := members[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			reflect.ValueOf(target).Elem().SetZero()
			invalid = append(invalid, name)
		}
	}
	slices.Sort(invalid)
	return invalid, nil
}

func prefixed(parent string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = parent + "." + n
	}
	return out
}

func decodeEntry(data json.RawMessage) RawEntry {
	var e RawEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return RawEntry{err: err}
	}
	return e
}

// source picks the tweet-shaped object the entry describes
func (e *RawEntry) source() *RawTweet {
	switch {
	case e.Tweet != nil:
		return e.Tweet
	case e.Like != nil:
		return e.Like.asTweet()
	default:
		return &e.Bare
	}
}

func (l *RawLike) asTweet() *RawTweet {
	t := &RawTweet{IDStr: l.TweetID, FullText: l.FullText}
	if l.ExpandedURL != "" {
		display := strings.TrimPrefix(strings.TrimPrefix(l.ExpandedURL, "https://"), "http://")
		t.Entities = &RawEntities{URLs: []RawURL{{
			URL:         l.ExpandedURL,
			ExpandedURL: l.ExpandedURL,
			DisplayURL:  display,
		}}}
	}
	return t
}

var jsonNull = []byte("null")

// flexString accepts a JSON string or number; numbers keep their literal text
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Anything unparseable
// leaves it unset, which downstream means "unknown".
type flexInt struct {
	Value int
	Valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		return nil
	}
	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		raw = n.String()
	}
	if v, err := strconv.Atoi(raw); err == nil {
		f.Value, f.Valid = v, true
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		f.Value, f.Valid = int(v), true
	}
	return nil
}

func (f flexInt) ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// flexBool accepts true/false or their string forms
type flexBool struct {
	Value bool
	Valid bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
		f.Value, f.Valid = v, true
	}
	return nil
}

func (f flexBool) ptr() *bool {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
