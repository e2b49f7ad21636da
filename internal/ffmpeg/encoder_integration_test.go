package ffmpeg

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/backmassage/photoreel/internal/planner"
)

func TestEncoder_RealFFmpeg(t *testing.T) {
	if _, err := exec.LookPath(Binary); err != nil {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	img := filepath.Join(dir, "still.png")
	writeTestPNG(t, img, 80, 40)

	e := NewEncoder(planner.Encoding{
		Width: 64, Height: 48, FrameRate: 10,
		Codec: "libx264", Preset: "ultrafast", CRF: 30, PixFmt: "yuv420p",
	}, false)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a := planner.Clip{Image: img, Duration: 1, Output: filepath.Join(dir, "a.mp4"),
		Fade: planner.Fade{Out: true, Duration: 0.25, OutStart: 0.75}}
	if err := e.RenderFade(ctx, a); err != nil {
		if strings.Contains(err.Error(), "Unknown encoder") {
			t.Skip("ffmpeg built without libx264")
		}
		t.Fatalf("RenderFade: %v", err)
	}
	b := planner.Clip{Image: img, Duration: 1, Output: filepath.Join(dir, "b.mp4")}
	if err := e.RenderStill(ctx, b); err != nil {
		t.Fatalf("RenderStill: %v", err)
	}

	out := filepath.Join(dir, "out.mp4")
	err := e.Concat(ctx, planner.Concat{
		Inputs:    []string{a.Output, b.Output},
		ListPath:  filepath.Join(dir, "list.txt"),
		Output:    out,
		Faststart: true,
	})
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil || fi.Size() == 0 {
		t.Fatalf("output missing or empty: %v", err)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, m); err != nil {
		t.Fatal(err)
	}
}
