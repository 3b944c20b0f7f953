// Package media inspects local media files to describe their streams.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
)

// Inspector reports the streams of a media file
type Inspector interface {
	GetStreams(ctx context.Context, path string) ([]models.MediaStreamSummary, error)
}

// FFprobe implements Inspector with the ffprobe binary
type FFprobe struct {
	binary string
}

// NewFFprobe creates an FFprobe inspector. An empty binary means "ffprobe" on PATH.
func NewFFprobe(binary string) *FFprobe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary}
}

// NewFromConfig creates an FFprobe inspector from the media section of cfg
func NewFromConfig(cfg *config.Config) *FFprobe {
	return NewFFprobe(cfg.Media.FFprobeBinary)
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// GetStreams runs ffprobe against path and keeps the video and audio streams
func (f *FFprobe) GetStreams(ctx context.Context, path string) ([]models.MediaStreamSummary, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, f.binary, "-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	streams, err := parseStreams(output)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	logger.Debug().Str("path", path).Int("streams", len(streams)).Msg("Probed media streams")
	return streams, nil
}

func parseStreams(output []byte) ([]models.MediaStreamSummary, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}

	streams := make([]models.MediaStreamSummary, 0, len(probe.Streams))
	for _, s := range probe.Streams {
		switch strings.ToLower(s.CodecType) {
		case "video":
			streams = append(streams, models.MediaStreamSummary{
				Type:   models.StreamTypeVideo,
				Codec:  s.CodecName,
				Height: s.Height,
			})
		case "audio":
			streams = append(streams, models.MediaStreamSummary{
				Type:  models.StreamTypeAudio,
				Codec: s.CodecName,
			})
		}
	}
	return streams, nil
}
