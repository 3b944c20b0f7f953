package models

// ExtractedSubtitleFile is one subtitle file pulled out of a download.
// Name is empty when the download was not an archive.
type ExtractedSubtitleFile struct {
	Name    string
	Content []byte
}

// FetchResult is the subtitle returned to the caller after a fetch
type FetchResult struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
	Language string `json:"language"` // ISO 639-2
	Format   string `json:"format"`
}
