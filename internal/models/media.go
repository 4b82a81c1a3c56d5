package models

// MediaKind is an open enum: unknown kinds from the export pass through unchanged.
type MediaKind string

const (
	MediaPhoto       MediaKind = "photo"
	MediaVideo       MediaKind = "video"
	MediaAnimatedGIF MediaKind = "animated_gif"
)

type MediaItem struct {
	Kind       MediaKind `json:"kind" yaml:"kind"`
	URL        string    `json:"url" yaml:"url"`
	PreviewURL string    `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
}
