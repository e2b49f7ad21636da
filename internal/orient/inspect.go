package orient

import (
	"errors"
	"image"
	"os"
)

// Info is what Inspect learns about one image without decoding its pixels.
type Info struct {
	Width       int
	Height      int
	Format      string // Decoder name: "jpeg", "png", "gif", "bmp", "tiff".
	Orientation int    // 0 when absent.
	Rotation    int    // Counter-clockwise degrees Normalize would apply.
	Err         error  // Header or metadata could not be read.
}

// Inspect reads the image header and orientation tag of path.
func Inspect(path string) Info {
	var info Info
	f, err := os.Open(path)
	if err != nil {
		info.Err = err
		return info
	}
	cfg, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		info.Err = err
		return info
	}
	info.Width, info.Height, info.Format = cfg.Width, cfg.Height, format

	o, err := ReadOrientation(path)
	switch {
	case errors.Is(err, ErrNoMetadata):
	case err != nil:
		info.Err = err
	default:
		info.Orientation = o
		info.Rotation = Rotation(o)
	}
	return info
}
