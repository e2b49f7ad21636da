package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildVideoFilter constructs the comma-joined -vf chain for one clip:
// letterbox into the target frame with the aspect ratio preserved, square
// pixels, the target pixel format, then the clip's fades.
func BuildVideoFilter(enc Encoding, f Fade) string {
	w, h := enc.Width, enc.Height
	filters := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black", w, h),
		"setsar=1",
	}
	if enc.PixFmt != "" {
		filters = append(filters, "format="+enc.PixFmt)
	}
	if f.In {
		filters = append(filters, "fade=t=in:st=0:d="+Seconds(f.Duration))
	}
	if f.Out {
		filters = append(filters, "fade=t=out:st="+Seconds(f.OutStart)+":d="+Seconds(f.Duration))
	}
	return strings.Join(filters, ",")
}

// Seconds formats a second count the shortest way ffmpeg accepts ("3", "0.5").
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
