package orient

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// ErrNoMetadata means the file carries no EXIF block at all. It is the
// normal case for PNG, GIF and BMP files and is not worth a warning.
var ErrNoMetadata = errors.New("no EXIF metadata")

// rotations maps EXIF orientation values to counter-clockwise degrees.
var rotations = map[int]int{
	3: 180,
	6: 270,
	8: 90,
}

// Rotation returns the counter-clockwise rotation for an EXIF orientation
// value, or 0 when the value calls for none.
func Rotation(orientation int) int {
	return rotations[orientation]
}

// ReadOrientation returns the EXIF orientation tag of the file at path.
// It returns (0, ErrNoMetadata) when the file has no EXIF block or the block
// has no orientation tag, and a wrapped error when the metadata is present
// but unreadable.
func ReadOrientation(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if x == nil {
		if err == nil || isMissingExif(err) {
			return 0, ErrNoMetadata
		}
		return 0, fmt.Errorf("read EXIF: %w", err)
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return 0, ErrNoMetadata
		}
		return 0, fmt.Errorf("read orientation tag: %w", err)
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, fmt.Errorf("decode orientation tag: %w", err)
	}
	return v, nil
}

// isMissingExif recognizes goexif's "nothing to parse" outcomes: the scan
// for an APP1 segment ran off the end of the file, or the segment it found
// was not EXIF (XMP, for example).
func isMissingExif(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "failed to find exif intro marker") ||
		strings.Contains(msg, "error reading 4 byte header")
}
