package ffmpeg

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/photoreel/internal/planner"
)

// Binary is the ffmpeg executable looked up on PATH.
const Binary = "ffmpeg"

// preamble is the shared head of every command: no banner, no stdin,
// overwrite outputs, and error-only logging unless verbose.
func preamble(verbose bool) []string {
	args := []string{Binary, "-hide_banner", "-nostdin", "-y"}
	if verbose {
		return append(args, "-loglevel", "info")
	}
	return append(args, "-loglevel", "error")
}

// ClipArgs constructs the argument slice that renders one still image into
// a clip of c.Duration seconds. The image is looped at the output frame
// rate, letterboxed into the target frame and encoded with the shared
// parameters so every clip and segment can be stream-copied together.
func ClipArgs(enc planner.Encoding, c planner.Clip, verbose bool) []string {
	fps := strconv.Itoa(enc.FrameRate)
	args := preamble(verbose)

	// --- Input ---
	// GIFs are forced through the image2 demuxer: one still frame, looped.
	if strings.EqualFold(filepath.Ext(c.Image), ".gif") {
		args = append(args, "-f", "image2")
	}
	args = append(args,
		"-loop", "1",
		"-framerate", fps,
		"-i", c.Image,
		"-t", planner.Seconds(c.Duration),
	)

	// --- Filters ---
	args = append(args, "-vf", planner.BuildVideoFilter(enc, c.Fade))

	// --- Video codec ---
	args = append(args, "-r", fps, "-c:v", enc.Codec)
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	args = append(args, "-crf", strconv.Itoa(enc.CRF))
	if enc.PixFmt != "" {
		args = append(args, "-pix_fmt", enc.PixFmt)
	}

	// --- Output ---
	return append(args, "-an", c.Output)
}

// ConcatArgs constructs the argument slice that joins the files listed in
// c.ListPath into c.Output without re-encoding.
func ConcatArgs(c planner.Concat, verbose bool) []string {
	args := preamble(verbose)
	args = append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", c.ListPath,
		"-c", "copy",
	)
	if c.Faststart {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, c.Output)
}

// WriteConcatList writes a concat-demuxer list naming inputs in order.
// Paths are made absolute so the list does not depend on where it lives.
func WriteConcatList(path string, inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat list %s: no inputs", filepath.Base(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			f.Close()
			return err
		}
		fmt.Fprintf(w, "file %s\n", QuoteConcatPath(abs))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// QuoteConcatPath single-quotes p for a concat list. An embedded quote
// closes the string, adds an escaped quote and reopens it.
func QuoteConcatPath(p string) string {
	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}
