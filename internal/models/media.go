package models

// StreamType distinguishes the media streams relevant for scoring
type StreamType string

const (
	StreamTypeVideo StreamType = "video"
	StreamTypeAudio StreamType = "audio"
)

// MediaStreamSummary describes one stream of a local media file
type MediaStreamSummary struct {
	Type   StreamType
	Codec  string
	Height int // Video only
}
