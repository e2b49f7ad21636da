package planner

import "github.com/backmassage/photoreel/internal/config"

// Encoding holds the fixed output parameters shared by every clip so that
// stream-copy concatenation is valid at every boundary.
type Encoding struct {
	Width     int
	Height    int
	FrameRate int
	Codec     string // e.g. "libx264"
	Preset    string
	CRF       int
	PixFmt    string // e.g. "yuv420p"
}

// EncodingFromConfig copies the encoder fields out of cfg.
func EncodingFromConfig(cfg *config.Config) Encoding {
	return Encoding{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FrameRate,
		Codec:     cfg.VideoCodec,
		Preset:    cfg.Preset,
		CRF:       cfg.CRF,
		PixFmt:    cfg.PixFmt,
	}
}

// Fade describes the opacity ramps applied to one clip.
type Fade struct {
	In       bool    // Ramp up from black starting at 0.
	Out      bool    // Ramp down to black starting at OutStart.
	Duration float64 // Length of each ramp in seconds.
	OutStart float64 // Clip duration minus Duration.
}

// None reports whether the clip is a plain still.
func (f Fade) None() bool { return !f.In && !f.Out }

// Clip is one image rendered for Duration seconds into Output.
type Clip struct {
	Chunk    int
	Position int
	Image    string
	Duration float64
	Fade     Fade
	Output   string
}

// Concat joins Inputs, in order, into Output without re-encoding. ListPath
// is the concat-demuxer list file to write.
type Concat struct {
	Inputs    []string
	ListPath  string
	Output    string
	Faststart bool // Move the moov atom to the front (final output only).
}
