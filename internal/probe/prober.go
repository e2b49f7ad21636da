package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Binary is the ffprobe executable looked up on PATH.
const Binary = "ffprobe"

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result.
func Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// FFprobe measures files by running ffprobe. The zero value is ready to use.
type FFprobe struct{}

// Duration returns the length of the file at path in seconds.
func (FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	pr, err := Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	d := pr.Duration()
	if d <= 0 {
		return 0, fmt.Errorf("ffprobe %q: no duration reported", path)
	}
	return d, nil
}

// Describe returns [ProbeResult.Summary] for the file at path.
func (FFprobe) Describe(ctx context.Context, path string) (string, error) {
	pr, err := Probe(ctx, path)
	if err != nil {
		return "", err
	}
	return pr.Summary(), nil
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	NbStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	PixFmt       string `json:"pix_fmt"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
	NbFrames     string `json:"nb_frames"`
}

// --- Conversion from wire types to result types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: FormatInfo{
			Filename:   raw.Format.Filename,
			NbStreams:  raw.Format.NbStreams,
			FormatName: raw.Format.FormatName,
			Duration:   parseFloat(raw.Format.Duration),
			Size:       parseInt64(raw.Format.Size),
			BitRate:    parseInt64(raw.Format.BitRate),
		},
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if pr.PrimaryVideo == nil {
				pr.PrimaryVideo = &VideoStream{
					Index:        s.Index,
					Codec:        s.CodecName,
					PixFmt:       s.PixFmt,
					Width:        s.Width,
					Height:       s.Height,
					AvgFrameRate: s.AvgFrameRate,
					Duration:     parseFloat(s.Duration),
					NbFrames:     int(parseInt64(s.NbFrames)),
				}
			}
		case "audio":
			pr.AudioStreams++
		}
	}
	return pr
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
