package orient

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder

	"github.com/backmassage/photoreel/internal/domain"
)

// jpegQuality is used for rotated copies of JPEG sources.
const jpegQuality = 95

// Logger is the subset of the logger the normalizer needs.
type Logger interface {
	Warn(string, ...interface{})
	Debug(string, ...interface{})
}

// PathAllocator hands out the workspace path for a normalized image.
type PathAllocator interface {
	NormalizedPath(idx int, ext string) string
}

// Normalizer applies orientation correction to one image at a time. It is
// safe for concurrent use as long as each call gets a distinct index.
type Normalizer struct {
	paths PathAllocator
	log   Logger
}

// NewNormalizer returns a Normalizer writing rotated copies to paths.
func NewNormalizer(paths PathAllocator, log Logger) *Normalizer {
	return &Normalizer{paths: paths, log: log}
}

// Normalize returns the sequence entry for the image at position idx. It
// never fails: unreadable metadata or pixels produce an entry whose Path is
// the untouched source with Fallback set.
func (n *Normalizer) Normalize(idx int, source string) domain.Image {
	im := domain.Image{Index: idx, Source: source, Path: source}
	name := filepath.Base(source)

	orientation, err := ReadOrientation(source)
	switch {
	case errors.Is(err, ErrNoMetadata):
		n.log.Debug("%s: no orientation metadata", name)
		return im
	case err != nil:
		n.log.Warn("%s: cannot read orientation (%v); using original image", name, err)
		im.Fallback = true
		return im
	}
	im.Orientation = orientation

	deg := Rotation(orientation)
	if deg == 0 {
		return im
	}

	out, err := n.rotateCopy(idx, source, deg)
	if err != nil {
		n.log.Warn("%s: cannot rotate %d° (%v); using original image", name, deg, err)
		im.Fallback = true
		return im
	}
	n.log.Debug("%s: orientation %d, rotated %d° -> %s", name, orientation, deg, filepath.Base(out))
	im.Path = out
	im.Rotation = deg
	return im
}

// rotateCopy decodes source, rotates it and writes the result to the
// workspace. JPEG sources stay JPEG; everything else is written as PNG so
// no quality is lost. The encoders write no EXIF, so the copy is not rotated
// a second time downstream.
func (n *Normalizer) rotateCopy(idx int, source string, deg int) (string, error) {
	f, err := os.Open(source)
	if err != nil {
		return "", err
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	rotated := Rotate(img, deg)

	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	dst := n.paths.NormalizedPath(idx, ext)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if ext == ".jpg" {
		err = jpeg.Encode(out, rotated, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(out, rotated)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("encode %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return dst, nil
}
