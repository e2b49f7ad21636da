package probe

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	NbStreams  int
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index        int
	Codec        string
	PixFmt       string
	Width        int
	Height       int
	AvgFrameRate string // Rational, e.g. "30/1".
	Duration     float64
	NbFrames     int
}

// ProbeResult is the parsed output of one ffprobe call. PrimaryVideo is the
// first video stream, nil if the file has none.
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
	AudioStreams int
}

// Duration returns the container duration, falling back to the video
// stream's own duration when the container does not report one.
func (p *ProbeResult) Duration() float64 {
	if p.Format.Duration > 0 {
		return p.Format.Duration
	}
	if p.PrimaryVideo != nil {
		return p.PrimaryVideo.Duration
	}
	return 0
}

// FrameRate evaluates the primary stream's average frame rate. It returns
// 0 when there is no video stream or the rate is unknown ("0/0").
func (p *ProbeResult) FrameRate() float64 {
	if p.PrimaryVideo == nil {
		return 0
	}
	return ParseRational(p.PrimaryVideo.AvgFrameRate)
}

// Resolution returns "WxH" of the primary stream, or "" when there is none.
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil {
		return ""
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}

// Summary describes the primary video stream, e.g.
// "1920x1080 h264 yuv420p @ 30.00 fps". It returns "no video" when the file
// has no video stream.
func (p *ProbeResult) Summary() string {
	if p.PrimaryVideo == nil {
		return "no video"
	}
	v := p.PrimaryVideo
	return fmt.Sprintf("%s %s %s @ %.2f fps", p.Resolution(), v.Codec, v.PixFmt, p.FrameRate())
}

// ParseRational parses "num/den" or a plain number. Malformed input and a
// zero denominator yield 0.
func ParseRational(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return parseFloat(num)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}
