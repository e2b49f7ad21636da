// Package config holds runtime configuration: defaults, config file and
// environment overrides, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/photoreel/internal/domain"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Sentinel validation errors. Callers match them with errors.Is.
var (
	ErrNoFolder      = errors.New("need exactly one folder_path argument")
	ErrFadeTooLong   = domain.ErrFadeTooLong
	ErrBadResolution = errors.New("resolution must be WIDTHxHEIGHT with positive even dimensions")
)

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// overlaid by [LoadFile], [ApplyEnv] and the cobra flags bound by
// [BindFlags], and finally checked by [Config.Validate].
type Config struct {
	// Paths.
	Folder  string
	Output  string // Default: "output.mp4".
	TempDir string // Parent of the scoped workspace; "" = OS temp dir.

	// Timing.
	DurationPerImage float64 // Seconds each image stays on screen. Default: 3.
	FadeDuration     float64 // Seconds of each fade ramp. Default: min(1, duration/3).
	FadeSet          bool    // FadeDuration came from a file, env or flag.
	ChunkSize        int     // Images per rendered segment. Default: 10.

	// Ordering.
	FirstImage string // Basename pinned to position 0; "" = none.
	Shuffle    bool   // Default: true. Cleared by --no-shuffle (natural name order).
	Seed       int64  // 0 = seeded from the clock.

	// Scheduling.
	Workers      int // Concurrent chunk renders. Default: 1 (sequential).
	ChunkRetries int // Extra attempts for a chunk that failed transiently. Default: 1.

	// Encoder settings.
	Width      int    // Fixed default: 1920.
	Height     int    // Fixed default: 1080.
	FrameRate  int    // Default: 30.
	VideoCodec string // Default: "libx264".
	Preset     string // Default: "medium".
	CRF        int    // Default: 23.
	PixFmt     string // Fixed default: "yuv420p".

	// Behavior flags.
	Verify     bool   // Default: true. Probe segment/final durations with ffprobe.
	ReportPath string // Optional YAML run report.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config with the built-in defaults: 1920x1080
// letterbox, 30 fps, H.264, yuv420p.
func DefaultConfig() Config {
	return Config{
		Output:           "output.mp4",
		DurationPerImage: 3,
		FadeDuration:     1,
		ChunkSize:        10,
		Shuffle:          true,
		Workers:          1,
		ChunkRetries:     1,
		Width:            1920,
		Height:           1080,
		FrameRate:        30,
		VideoCodec:       "libx264",
		Preset:           "medium",
		CRF:              23,
		PixFmt:           "yuv420p",
		Verify:           true,
		ColorMode:        ColorAuto,
	}
}

// DefaultFade is the longest fade picked when the user does not set one.
const DefaultFade = 1.0

// ResolveFade derives the fade from the per-image duration unless a
// configuration layer set it explicitly, so --duration alone never yields a
// fade as long as the image.
func (c *Config) ResolveFade() {
	if c.FadeSet {
		return
	}
	c.FadeDuration = min(DefaultFade, c.DurationPerImage/3)
}

// Validate checks numeric ranges and enum fields. The fade/duration check
// runs here so a bad timing configuration is rejected before any image is
// touched.
func (c *Config) Validate() error {
	if c.Folder == "" {
		return ErrNoFolder
	}
	if c.Output == "" {
		return errors.New("output path must not be empty")
	}
	if c.DurationPerImage <= 0 {
		return fmt.Errorf("duration must be positive (got %g)", c.DurationPerImage)
	}
	if c.FadeDuration < 0 {
		return fmt.Errorf("fade must not be negative (got %g)", c.FadeDuration)
	}
	if c.FadeDuration >= c.DurationPerImage {
		return fmt.Errorf("%w (fade %gs, duration %gs)", ErrFadeTooLong, c.FadeDuration, c.DurationPerImage)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be at least 1 (got %d)", c.ChunkSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.ChunkRetries < 0 {
		return fmt.Errorf("retries must not be negative (got %d)", c.ChunkRetries)
	}
	if c.FrameRate < 1 {
		return fmt.Errorf("fps must be at least 1 (got %d)", c.FrameRate)
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("%w (got %dx%d)", ErrBadResolution, c.Width, c.Height)
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("crf must be within 0-51 (got %d)", c.CRF)
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}
	return nil
}

// Resolution returns "WxH".
func (c *Config) Resolution() string {
	return strconv.Itoa(c.Width) + "x" + strconv.Itoa(c.Height)
}

// ParseResolution parses "WxH" (case-insensitive separator) into c.Width and
// c.Height.
func (c *Config) ParseResolution(s string) error {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return fmt.Errorf("%w (got %q)", ErrBadResolution, s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("%w (got %q)", ErrBadResolution, s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("%w (got %q)", ErrBadResolution, s)
	}
	c.Width, c.Height = w, h
	return nil
}

// Timing returns the per-image timing used by the renderer.
func (c *Config) Timing() domain.Timing {
	return domain.Timing{
		PerImage:  c.DurationPerImage,
		Fade:      c.FadeDuration,
		FrameRate: c.FrameRate,
	}
}
