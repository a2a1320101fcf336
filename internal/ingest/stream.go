package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// grabTimeout bounds a single-frame ffmpeg invocation so a stalled stream
// cannot wedge the camera's ingestion tick.
const grabTimeout = 8 * time.Second

// readStreamFrame opens the stream, reads exactly one frame, and closes it,
// per spec §4.1's stream-mode contract and design note §9 (open-per-tick,
// no persistent decoder). Grounded on the teacher's ffmpeg invocation
// conventions, simplified from a continuous pipe to a single -vframes 1
// capture per call.
func readStreamFrame(ctx context.Context, streamURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, grabTimeout)
	defer cancel()

	args := []string{"-hide_banner", "-loglevel", "error"}

	switch {
	case strings.HasPrefix(streamURL, "rtsp://"):
		args = append(args, "-rtsp_transport", "tcp", "-stimeout", "5000000")
	case strings.HasPrefix(streamURL, "http://"), strings.HasPrefix(streamURL, "https://"):
		args = append(args, "-timeout", "5000000")
	}

	args = append(args,
		"-i", streamURL,
		"-vframes", "1",
		"-f", "image2",
		"-vcodec", "mjpeg",
		"-q:v", "3",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg grab frame: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg grab frame: no data returned")
	}
	return stdout.Bytes(), nil
}
