package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
)

// wrapperPattern matches the trailing array assignment of script-wrapped
// exports, e.g. `window.YTD.bookmark.part0 = [ ... ];`
var wrapperPattern = regexp.MustCompile(`(?s)=\s*(\[.*\])\s*;?\s*$`)

// Extract returns the entries of a bookmark payload in document order.
// Wrapped content has its variable assignment stripped first.
func Extract(content string, wrapped bool) ([]RawEntry, error) {
	payload := []byte(content)
	if wrapped {
		m := wrapperPattern.FindSubmatchIndex(payload)
		if m == nil {
			return nil, &FormatError{Reason: ReasonUnknownWrapper}
		}
		payload = payload[m[2]:m[3]]
	}
	return decodeArray(payload)
}

func decodeArray(payload []byte) ([]RawEntry, error) {
	payload = bytes.TrimSpace(payload)

	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &FormatError{Reason: ReasonNotArray}
		}
		return nil, &FormatError{Reason: ReasonInvalidJSON, Err: err}
	}
	if items == nil {
		// a literal null decodes without error
		return nil, &FormatError{Reason: ReasonNotArray}
	}

	entries := make([]RawEntry, len(items))
	for i, item := range items {
		entries[i] = decodeEntry(item)
	}
	return entries, nil
}
