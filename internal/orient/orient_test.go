package orient

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/photoreel/internal/logging"
)

type dirPaths string

func (d dirPaths) NormalizedPath(idx int, ext string) string {
	return filepath.Join(string(d), fmt.Sprintf("img-%05d%s", idx, ext))
}

// exifSegment builds a JPEG APP1 segment holding a big-endian TIFF header
// with a single IFD0 entry: Orientation (0x0112), SHORT, count 1.
func exifSegment(orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.WriteString("MM")
	_ = binary.Write(&tiff, binary.BigEndian, uint16(42))
	_ = binary.Write(&tiff, binary.BigEndian, uint32(8))
	_ = binary.Write(&tiff, binary.BigEndian, uint16(1))      // entry count
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0x0112)) // tag
	_ = binary.Write(&tiff, binary.BigEndian, uint16(3))      // SHORT
	_ = binary.Write(&tiff, binary.BigEndian, uint32(1))      // count
	_ = binary.Write(&tiff, binary.BigEndian, orientation)
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0)) // value padding
	_ = binary.Write(&tiff, binary.BigEndian, uint32(0)) // next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	seg := []byte{0xFF, 0xE1}
	seg = binary.BigEndian.AppendUint16(seg, uint16(len(payload)+2))
	return append(seg, payload...)
}

// writeJPEG writes a w x h JPEG whose left half is red and right half is
// blue, optionally carrying an orientation tag.
func writeJPEG(t *testing.T, dir, name string, w, h int, orientation uint16) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if orientation != 0 {
		// Insert APP1 right after SOI.
		out := append([]byte{}, data[:2]...)
		out = append(out, exifSegment(orientation)...)
		data = append(out, data[2:]...)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Width, cfg.Height
}

func TestRotation(t *testing.T) {
	tests := []struct {
		orientation int
		want        int
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{3, 180},
		{4, 0},
		{5, 0},
		{6, 270},
		{7, 0},
		{8, 90},
		{9, 0},
	}
	for _, tt := range tests {
		if got := Rotation(tt.orientation); got != tt.want {
			t.Errorf("Rotation(%d) = %d, want %d", tt.orientation, got, tt.want)
		}
	}
}

func TestReadOrientation(t *testing.T) {
	dir := t.TempDir()
	for _, o := range []uint16{1, 3, 6, 8} {
		path := writeJPEG(t, dir, fmt.Sprintf("o%d.jpg", o), 8, 4, o)
		got, err := ReadOrientation(path)
		if err != nil {
			t.Fatalf("orientation %d: %v", o, err)
		}
		if got != int(o) {
			t.Errorf("ReadOrientation = %d, want %d", got, o)
		}
	}
}

func TestReadOrientation_NoMetadata(t *testing.T) {
	dir := t.TempDir()
	jpg := writeJPEG(t, dir, "plain.jpg", 4, 4, 0)
	if _, err := ReadOrientation(jpg); err != ErrNoMetadata {
		t.Errorf("plain jpeg: err = %v, want ErrNoMetadata", err)
	}

	pngPath := filepath.Join(dir, "plain.png")
	f, _ := os.Create(pngPath)
	_ = png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	f.Close()
	if _, err := ReadOrientation(pngPath); err != ErrNoMetadata {
		t.Errorf("png: err = %v, want ErrNoMetadata", err)
	}
}

func TestRotate(t *testing.T) {
	// 2x1 image: red at (0,0), blue at (1,0).
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	tests := []struct {
		deg       int
		w, h      int
		redAt     image.Point
		blueAt    image.Point
		unchanged bool
	}{
		// Counter-clockwise 90: the right end moves to the top.
		{deg: 90, w: 1, h: 2, redAt: image.Pt(0, 1), blueAt: image.Pt(0, 0)},
		{deg: 180, w: 2, h: 1, redAt: image.Pt(1, 0), blueAt: image.Pt(0, 0)},
		// Counter-clockwise 270: the right end moves to the bottom.
		{deg: 270, w: 1, h: 2, redAt: image.Pt(0, 0), blueAt: image.Pt(0, 1)},
		{deg: 45, unchanged: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.deg), func(t *testing.T) {
			got := Rotate(src, tt.deg)
			if tt.unchanged {
				if got != image.Image(src) {
					t.Error("unsupported angle should return the input")
				}
				return
			}
			b := got.Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
			if c := color.NRGBAModel.Convert(got.At(tt.redAt.X, tt.redAt.Y)); c != red {
				t.Errorf("at %v = %v, want red", tt.redAt, c)
			}
			if c := color.NRGBAModel.Convert(got.At(tt.blueAt.X, tt.blueAt.Y)); c != blue {
				t.Errorf("at %v = %v, want blue", tt.blueAt, c)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	src := t.TempDir()
	work := t.TempDir()
	var logBuf bytes.Buffer
	n := NewNormalizer(dirPaths(work), logging.NewWriterLogger(&logBuf, true))

	tests := []struct {
		name        string
		orientation uint16
		rotation    int
		rewritten   bool
		w, h        int
	}{
		{"none.jpg", 0, 0, false, 16, 8},
		{"upright.jpg", 1, 0, false, 16, 8},
		{"upside.jpg", 3, 180, true, 16, 8},
		{"right.jpg", 6, 270, true, 8, 16},
		{"left.jpg", 8, 90, true, 8, 16},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeJPEG(t, src, tt.name, 16, 8, tt.orientation)
			im := n.Normalize(i, path)
			if im.Index != i || im.Source != path {
				t.Errorf("identity fields = %+v", im)
			}
			if im.Fallback {
				t.Error("unexpected fallback")
			}
			if im.Rotation != tt.rotation {
				t.Errorf("Rotation = %d, want %d", im.Rotation, tt.rotation)
			}
			if tt.rewritten == (im.Path == path) {
				t.Errorf("Path = %s, rewritten = %v", im.Path, tt.rewritten)
			}
			if tt.rewritten && filepath.Dir(im.Path) != work {
				t.Errorf("rotated copy %s outside workspace", im.Path)
			}
			w, h := decodeSize(t, im.Path)
			if w != tt.w || h != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestNormalize_CorruptFallsBack(t *testing.T) {
	src := t.TempDir()
	work := t.TempDir()

	// Valid orientation tag followed by garbage instead of image data.
	path := filepath.Join(src, "broken.jpg")
	data := append([]byte{0xFF, 0xD8}, exifSegment(6)...)
	data = append(data, []byte("not really a jpeg")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var logBuf bytes.Buffer
	n := NewNormalizer(dirPaths(work), logging.NewWriterLogger(&logBuf, false))
	im := n.Normalize(0, path)
	if !im.Fallback || im.Path != path || im.Rotation != 0 {
		t.Errorf("got %+v, want fallback to original", im)
	}
	if !bytes.Contains(logBuf.Bytes(), []byte("[WARN]")) {
		t.Errorf("expected a warning, log: %s", logBuf.String())
	}
	entries, _ := os.ReadDir(work)
	if len(entries) != 0 {
		t.Errorf("workspace not clean after failed rotation: %d entries", len(entries))
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, "tagged.jpg", 16, 8, 8)
	info := Inspect(path)
	if info.Err != nil {
		t.Fatal(info.Err)
	}
	if info.Width != 16 || info.Height != 8 || info.Format != "jpeg" {
		t.Errorf("header = %+v", info)
	}
	if info.Orientation != 8 || info.Rotation != 90 {
		t.Errorf("orientation = %d rotation = %d", info.Orientation, info.Rotation)
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if Inspect(bad).Err == nil {
		t.Error("expected error for unreadable header")
	}
}
