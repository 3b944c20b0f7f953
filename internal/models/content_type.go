package models

import (
	"fmt"
	"strings"
)

// ContentType is the catalog's media type. It travels on the wire as its
// integer value, never as a name.
type ContentType int

const (
	ContentTypeNone ContentType = iota
	ContentTypeMovie
	ContentTypeEpisode
)

// String returns the lower-case name of the content type
func (c ContentType) String() string {
	switch c {
	case ContentTypeMovie:
		return "movie"
	case ContentTypeEpisode:
		return "episode"
	default:
		return "none"
	}
}

// Valid reports whether c is one of the downloadable content types
func (c ContentType) Valid() bool {
	return c == ContentTypeMovie || c == ContentTypeEpisode
}

// ParseContentType converts "movie"/"episode" (or "1"/"2") to a ContentType
func ParseContentType(value string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "1":
		return ContentTypeMovie, nil
	case "episode", "2":
		return ContentTypeEpisode, nil
	default:
		return ContentTypeNone, fmt.Errorf("unknown content type %q", value)
	}
}
