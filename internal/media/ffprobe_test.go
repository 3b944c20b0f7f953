package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Belphemur/titlovi/internal/models"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video", "width": 3840, "height": 2160},
    {"index": 1, "codec_name": "eac3", "codec_type": "audio", "channels": 6},
    {"index": 2, "codec_name": "subrip", "codec_type": "subtitle"},
    {"index": 3, "codec_name": "mjpeg", "codec_type": "video", "width": 600, "height": 900}
  ]
}`

func TestParseStreams(t *testing.T) {
	t.Parallel()
	got, err := parseStreams([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("parseStreams() error: %v", err)
	}
	want := []models.MediaStreamSummary{
		{Type: models.StreamTypeVideo, Codec: "hevc", Height: 2160},
		{Type: models.StreamTypeAudio, Codec: "eac3"},
		{Type: models.StreamTypeVideo, Codec: "mjpeg", Height: 900},
	}
	if len(got) != len(want) {
		t.Fatalf("parseStreams() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stream %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseStreams_Invalid(t *testing.T) {
	t.Parallel()
	if _, err := parseStreams([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a unix shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFFprobe_GetStreams(t *testing.T) {
	t.Parallel()
	bin := writeScript(t, "cat <<'JSON'\n"+sampleProbe+"\nJSON\n")

	streams, err := NewFFprobe(bin).GetStreams(context.Background(), "/media/Dune.2021.mkv")
	if err != nil {
		t.Fatalf("GetStreams() error: %v", err)
	}
	if len(streams) != 3 || streams[0].Codec != "hevc" {
		t.Errorf("GetStreams() = %+v", streams)
	}
}

func TestFFprobe_GetStreamsFailure(t *testing.T) {
	t.Parallel()
	bin := writeScript(t, "echo 'No such file or directory' >&2\nexit 1\n")

	_, err := NewFFprobe(bin).GetStreams(context.Background(), "/missing.mkv")
	if err == nil || !strings.Contains(err.Error(), "No such file or directory") {
		t.Errorf("GetStreams() error = %v, want stderr in message", err)
	}
}

func TestFFprobe_EmptyPathAndMissingBinary(t *testing.T) {
	t.Parallel()
	if _, err := NewFFprobe("").GetStreams(context.Background(), "  "); err == nil {
		t.Error("expected error for empty path")
	}
	missing := filepath.Join(t.TempDir(), "no-ffprobe")
	if _, err := NewFFprobe(missing).GetStreams(context.Background(), "/a.mkv"); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestNewFFprobe_DefaultBinary(t *testing.T) {
	t.Parallel()
	if got := NewFFprobe(" ").binary; got != "ffprobe" {
		t.Errorf("binary = %q, want ffprobe", got)
	}
}
