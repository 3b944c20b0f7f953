// Package archive unpacks downloaded subtitle payloads. Downloads are usually
// zip archives, occasionally RAR, and sometimes a bare subtitle file; the
// extractor handles all three without treating format errors as failures.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/nwaples/rardecode/v2"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultMaxEntrySize caps a single decompressed entry (20 MB).
	DefaultMaxEntrySize int64 = 20 * 1024 * 1024
	// DefaultMaxTotalSize caps the sum of all decompressed entries (100 MB).
	DefaultMaxTotalSize int64 = 100 * 1024 * 1024
)

var (
	rarSignature = []byte("Rar!\x1a\x07")
	errEmptyRar  = errors.New("rar archive has no entries")
)

// Options tunes which entries are selected and how much an archive may expand.
type Options struct {
	Extensions   []string
	MaxEntrySize int64
	MaxTotalSize int64
}

// Extractor selects subtitle entries from archive payloads.
type Extractor struct {
	extensions []string
	maxEntry   int64
	maxTotal   int64
}

// New creates an Extractor. Zero values fall back to .srt and the default limits.
func New(opts Options) *Extractor {
	e := &Extractor{maxEntry: opts.MaxEntrySize, maxTotal: opts.MaxTotalSize}
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.extensions = append(e.extensions, ext)
	}
	if len(e.extensions) == 0 {
		e.extensions = []string{".srt"}
	}
	if e.maxEntry <= 0 {
		e.maxEntry = DefaultMaxEntrySize
	}
	if e.maxTotal <= 0 {
		e.maxTotal = DefaultMaxTotalSize
	}
	return e
}

// NewFromConfig builds an Extractor from the archive section of cfg.
func NewFromConfig(cfg *config.Config) *Extractor {
	return New(Options{
		Extensions:   cfg.Archive.Extensions,
		MaxEntrySize: cfg.Archive.MaxEntrySize,
		MaxTotalSize: cfg.Archive.MaxTotalSize,
	})
}

// ExtractReader buffers r and extracts it. Read errors are returned as-is.
func (e *Extractor) ExtractReader(r io.Reader) ([]models.ExtractedSubtitleFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle payload: %w", err)
	}
	return e.Extract(raw)
}

// Extract returns every subtitle entry of a zip or RAR payload, possibly none.
// When raw is not a readable archive the whole payload is returned as a single
// unnamed file. The only error is *apperrors.ErrArchiveTooLarge.
func (e *Extractor) Extract(raw []byte) ([]models.ExtractedSubtitleFile, error) {
	logger := config.GetLogger()

	if zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw))); err == nil {
		return e.extractZip(zr)
	} else if !bytes.HasPrefix(raw, rarSignature) {
		logger.Debug().Err(err).Int("size", len(raw)).Msg("Payload is not an archive, using it as a single subtitle")
		return rawFallback(raw), nil
	}

	files, err := e.extractRar(raw)
	if err != nil {
		var tooLarge *apperrors.ErrArchiveTooLarge
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		logger.Warn().Err(err).Int("size", len(raw)).Msg("Failed to open RAR archive, using payload as a single subtitle")
		return rawFallback(raw), nil
	}
	return files, nil
}

func rawFallback(raw []byte) []models.ExtractedSubtitleFile {
	return []models.ExtractedSubtitleFile{{Name: "", Content: raw}}
}

func (e *Extractor) extractZip(zr *zip.Reader) ([]models.ExtractedSubtitleFile, error) {
	logger := config.GetLogger()

	// Reject on declared sizes before decompressing anything
	var declared uint64
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || !e.wanted(file.Name) {
			continue
		}
		if file.UncompressedSize64 > uint64(e.maxEntry) {
			return nil, &apperrors.ErrArchiveTooLarge{Entry: file.Name, Size: file.UncompressedSize64, Limit: e.maxEntry}
		}
		declared += file.UncompressedSize64
		if declared > uint64(e.maxTotal) {
			return nil, &apperrors.ErrArchiveTooLarge{Size: declared, Limit: e.maxTotal}
		}
	}

	var (
		files []models.ExtractedSubtitleFile
		total int64
	)
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || !e.wanted(file.Name) {
			continue
		}
		name := entryName(file.Name, file.NonUTF8)

		rc, err := file.Open()
		if err != nil {
			logger.Warn().Err(err).Str("entry", name).Msg("Skipping unreadable zip entry")
			continue
		}
		content, err := e.readEntry(rc, name, &total)
		_ = rc.Close()
		if err != nil {
			var tooLarge *apperrors.ErrArchiveTooLarge
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			logger.Warn().Err(err).Str("entry", name).Msg("Skipping unreadable zip entry")
			continue
		}

		logger.Debug().Str("entry", name).Int("size", len(content)).Msg("Extracted subtitle from zip")
		files = append(files, models.ExtractedSubtitleFile{Name: name, Content: content})
	}

	logger.Debug().Int("entries", len(zr.File)).Int("subtitles", len(files)).Msg("Zip archive extracted")
	return files, nil
}

func (e *Extractor) extractRar(raw []byte) ([]models.ExtractedSubtitleFile, error) {
	logger := config.GetLogger()

	rr, err := rardecode.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var (
		files   []models.ExtractedSubtitleFile
		total   int64
		headers int
	)
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			if headers == 0 {
				return nil, errEmptyRar
			}
			break
		}
		if err != nil {
			// A corrupt header ends the walk; keep what was read so far
			if len(files) == 0 {
				return nil, err
			}
			logger.Warn().Err(err).Int("subtitles", len(files)).Msg("RAR archive truncated")
			break
		}
		headers++
		if header.IsDir || !e.wanted(header.Name) {
			continue
		}
		if !header.UnKnownSize && header.UnPackedSize > e.maxEntry {
			return nil, &apperrors.ErrArchiveTooLarge{Entry: header.Name, Size: uint64(header.UnPackedSize), Limit: e.maxEntry}
		}

		name := entryName(header.Name, false)
		content, err := e.readEntry(rr, name, &total)
		if err != nil {
			var tooLarge *apperrors.ErrArchiveTooLarge
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			logger.Warn().Err(err).Str("entry", name).Msg("Skipping unreadable RAR entry")
			continue
		}

		logger.Debug().Str("entry", name).Int("size", len(content)).Msg("Extracted subtitle from RAR")
		files = append(files, models.ExtractedSubtitleFile{Name: name, Content: content})
	}
	return files, nil
}

// readEntry enforces both limits against the bytes actually decompressed.
func (e *Extractor) readEntry(r io.Reader, name string, total *int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, e.maxEntry+1))
	if err != nil {
		return nil, err
	}
	size := int64(len(content))
	if size > e.maxEntry {
		return nil, &apperrors.ErrArchiveTooLarge{Entry: name, Size: uint64(size), Limit: e.maxEntry}
	}
	*total += size
	if *total > e.maxTotal {
		return nil, &apperrors.ErrArchiveTooLarge{Size: uint64(*total), Limit: e.maxTotal}
	}
	return content, nil
}

func (e *Extractor) wanted(name string) bool {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	for _, ext := range e.extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// entryName normalizes separators and guarantees a valid UTF-8 name. Legacy
// zip tools store names in code page 437.
func entryName(name string, nonUTF8 bool) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if utf8.ValidString(name) {
		return name
	}
	if nonUTF8 {
		if decoded, err := charmap.CodePage437.NewDecoder().String(name); err == nil {
			return decoded
		}
	}
	return strings.ToValidUTF8(name, "\uFFFD")
}
