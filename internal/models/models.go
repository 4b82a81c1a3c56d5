package models

// User is the author of a bookmarked post
type User struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	ScreenName      string `json:"screen_name" yaml:"screen_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty" yaml:"profile_image_url,omitempty"`
	Verified        *bool  `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// URLEntity is a link attached to a post
type URLEntity struct {
	URL         string `json:"url" yaml:"url"`
	ExpandedURL string `json:"expanded_url" yaml:"expanded_url"`
	DisplayURL  string `json:"display_url" yaml:"display_url"`
}

// Post is the canonical form of a bookmarked tweet.
// Optional counts are nil when the export did not carry them.
type Post struct {
	ID                  string      `json:"id" yaml:"id"`
	Text                string      `json:"text" yaml:"text"`
	CreatedAt           string      `json:"created_at" yaml:"created_at"`
	Author              User        `json:"author" yaml:"author"`
	FavoriteCount       *int        `json:"favorite_count,omitempty" yaml:"favorite_count,omitempty"`
	RetweetCount        *int        `json:"retweet_count,omitempty" yaml:"retweet_count,omitempty"`
	ReplyCount          *int        `json:"reply_count,omitempty" yaml:"reply_count,omitempty"`
	Media               []MediaItem `json:"media,omitempty" yaml:"media,omitempty"`
	URLs                []URLEntity `json:"urls,omitempty" yaml:"urls,omitempty"`
	InReplyToPostID     string      `json:"in_reply_to_post_id,omitempty" yaml:"in_reply_to_post_id,omitempty"`
	InReplyToScreenName string      `json:"in_reply_to_screen_name,omitempty" yaml:"in_reply_to_screen_name,omitempty"`
	IsQuote             *bool       `json:"is_quote,omitempty" yaml:"is_quote,omitempty"`
}

// Bookmark wraps a post with the time it was saved.
// Archives carry no separate bookmark time, so BookmarkedAt mirrors Post.CreatedAt.
type Bookmark struct {
	Post         Post   `json:"post" yaml:"post"`
	BookmarkedAt string `json:"bookmarked_at,omitempty" yaml:"bookmarked_at,omitempty"`
}
