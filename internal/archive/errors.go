package archive

import "errors"

const (
	ReasonNoBookmarkData   = "no bookmark data found"
	ReasonUnknownWrapper   = "unrecognized wrapper format"
	ReasonNotArray         = "payload is not a JSON array"
	ReasonInvalidJSON      = "invalid JSON"
	ReasonUnreadableBundle = "unreadable bundle"
	ReasonUndecodableText  = "undecodable text"
	ReasonUnreadableMember = "unreadable bundle member"
)

// FormatError reports an input that does not contain a recognizable bookmark
// payload. Ingestion returns no partial result alongside it.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "archive format: " + e.Reason + ": " + e.Err.Error()
	}
	return "archive format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsFormatError reports whether err is, or wraps, a *FormatError
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// ErrMissingID marks an entry dropped because it carries no usable id
var ErrMissingID = errors.New("entry has no usable id")
