package domain

// Image is one entry of the ordered slideshow sequence after orientation
// normalization. Source is a back-reference to the original file, which is
// never modified; Path is what the encoder reads.
type Image struct {
	Index       int    // Position in the ordered sequence.
	Source      string // Original file.
	Path        string // Rotated copy in the workspace, or Source when no rotation applies.
	Orientation int    // EXIF orientation tag, 0 when absent or unreadable.
	Rotation    int    // Degrees counter-clockwise applied to produce Path.
	Fallback    bool   // Normalization failed and Path fell back to Source.
}

// Rotated reports whether Path is a rotated copy.
func (im Image) Rotated() bool { return im.Rotation != 0 && !im.Fallback }
