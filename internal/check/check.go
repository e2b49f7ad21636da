// Package check provides system diagnostics (the check subcommand) and
// pre-run dependency validation (CheckDeps) for ffmpeg, ffprobe and the
// configured video encoder.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/photoreel/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is
// missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH (needed for --verify; use --no-verify to skip)")
	ErrEncodeFailed    = errors.New("test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// lookPath and run are swapped out in tests.
var (
	lookPath = exec.LookPath
	run      = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
)

// RunCheck prints the availability of ffmpeg and ffprobe, the H.264
// encoders ffmpeg reports, and the result of a short test encode with the
// configured codec. It is informational only and does not stop on failure.
// It reports whether everything a render needs is present.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(ctx, log, "ffmpeg")
	if !checkTool(ctx, log, "ffprobe") && cfg.Verify {
		ok = false
	}
	checkH264Encoders(ctx, log)

	log.Info("Testing %s encode (%s, %s)...", cfg.VideoCodec, cfg.PixFmt, cfg.Preset)
	if err := testEncode(ctx, cfg); err != nil {
		log.Error("%s test encode failed: %v", cfg.VideoCodec, err)
		ok = false
	} else {
		log.Success("%s works", cfg.VideoCodec)
	}
	return ok
}

// checkTool verifies name is on PATH and logs its version line.
func checkTool(ctx context.Context, log Logger, name string) bool {
	if _, err := lookPath(name); err != nil {
		log.Error("%s not found", name)
		return false
	}
	out, err := run(ctx, name, "-version")
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return true
	}
	log.Success("%s: %s", name, firstLine(string(out)))
	return true
}

// checkH264Encoders lists the H.264 encoders reported by ffmpeg.
func checkH264Encoders(ctx context.Context, log Logger) {
	out, err := run(ctx, "ffmpeg", "-hide_banner", "-encoders")
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	encoders := H264Encoders(string(out))
	if len(encoders) == 0 {
		log.Warn("No H.264 encoders found")
		return
	}
	log.Info("H.264 encoders:")
	for _, line := range encoders {
		log.Info("  %s", line)
	}
}

// H264Encoders picks the H.264 lines out of `ffmpeg -encoders` output.
func H264Encoders(list string) []string {
	var out []string
	for _, line := range strings.Split(list, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "h264") || strings.Contains(lower, "h.264") || strings.Contains(lower, "x264") {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// CheckDeps is the pre-run validation: ffmpeg must be on PATH, ffprobe too
// when verification is on, and a short encode with the configured codec
// must succeed. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if _, err := lookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if cfg.Verify {
		if _, err := lookPath("ffprobe"); err != nil {
			return ErrFfprobeNotFound
		}
	}
	if err := testEncode(ctx, cfg); err != nil {
		return fmt.Errorf("%w with %s: %v", ErrEncodeFailed, cfg.VideoCodec, err)
	}
	return nil
}

// testEncode encodes a tenth of a second of black frames at the configured
// size and pixel format and discards the result.
func testEncode(ctx context.Context, cfg *config.Config) error {
	_, err := run(ctx, "ffmpeg", testEncodeArgs(cfg)...)
	return err
}

func testEncodeArgs(cfg *config.Config) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", fmt.Sprintf("color=black:s=%s:d=0.1:r=%d", cfg.Resolution(), cfg.FrameRate),
		"-c:v", cfg.VideoCodec,
	}
	if cfg.PixFmt != "" {
		args = append(args, "-pix_fmt", cfg.PixFmt)
	}
	return append(args, "-f", "null", "-")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}
