// Package ffmpeg runs ffmpeg to cut time ranges out of a source video.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes binary with args and returns its combined output.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// Cut describes one re-encoded sub-range. Start and Duration are seconds.
type Cut struct {
	Input      string
	Output     string
	Start      float64
	Duration   float64
	VideoCodec string
	AudioCodec string
}

// Args renders the ffmpeg argument list for the cut. Output is always muxed
// as MP4 with the moov atom up front so clips stream before they finish
// downloading.
func (c Cut) Args() []string {
	videoCodec := strings.TrimSpace(c.VideoCodec)
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	audioCodec := strings.TrimSpace(c.AudioCodec)
	if audioCodec == "" {
		audioCodec = "aac"
	}
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(c.Start),
		"-i", c.Input,
		"-t", formatSeconds(c.Duration),
		"-c:v", videoCodec,
		"-c:a", audioCodec,
		"-movflags", "+faststart",
		"-f", "mp4",
		c.Output,
	}
}

// Command wraps an ffmpeg binary.
type Command struct {
	Binary string
	run    Runner
}

// New returns a command for binary. A nil runner executes the real process.
func New(binary string, run Runner) *Command {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if run == nil {
		run = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, binary, args...).CombinedOutput()
		}
	}
	return &Command{Binary: binary, run: run}
}

// Cut runs ffmpeg for the requested range.
func (c *Command) Cut(ctx context.Context, cut Cut) error {
	if strings.TrimSpace(cut.Input) == "" || strings.TrimSpace(cut.Output) == "" {
		return errors.New("ffmpeg cut: input and output required")
	}
	if cut.Duration <= 0 {
		return fmt.Errorf("ffmpeg cut: non-positive duration %s", formatSeconds(cut.Duration))
	}
	output, err := c.run(ctx, c.Binary, cut.Args()...)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cut: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg cut: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
