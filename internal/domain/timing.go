// Package domain holds the value types shared by every stage of a render:
// images, chunks, segments, the final video, and the timing that ties them
// together.
package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrFadeTooLong reports a fade window that does not fit inside one image's
// display time.
var ErrFadeTooLong = errors.New("fade duration must be shorter than the per-image duration")

// Timing carries the per-image display time and the fade length, both in
// seconds, plus the frame rate used to express tolerances.
type Timing struct {
	PerImage  float64
	Fade      float64
	FrameRate int
}

// Validate rejects non-positive display times, negative fades and fades that
// are not strictly shorter than the display time.
func (t Timing) Validate() error {
	if t.PerImage <= 0 {
		return fmt.Errorf("per-image duration must be positive (got %g)", t.PerImage)
	}
	if t.Fade < 0 {
		return fmt.Errorf("fade must not be negative (got %g)", t.Fade)
	}
	if t.Fade >= t.PerImage {
		return fmt.Errorf("%w (fade %gs, duration %gs)", ErrFadeTooLong, t.Fade, t.PerImage)
	}
	if t.FrameRate < 1 {
		return fmt.Errorf("frame rate must be at least 1 (got %d)", t.FrameRate)
	}
	return nil
}

// ChunkDuration is the length of a segment holding n images. Fades blend
// inside each image's slot and never extend it.
func (t Timing) ChunkDuration(n int) float64 {
	return float64(n) * t.PerImage
}

// Frame is the length of one frame in seconds.
func (t Timing) Frame() float64 {
	return 1 / float64(t.FrameRate)
}

// Within reports whether got is within one frame of want.
func (t Timing) Within(got, want float64) bool {
	return math.Abs(got-want) <= t.Frame()+1e-9
}
