package domain

// Chunk is a bounded, order-preserving run of images rendered as one
// segment. Index is 0-based and fixes the chunk's place in the final video.
type Chunk struct {
	Index  int
	Images []Image
}

// Len returns the number of images in the chunk.
func (c Chunk) Len() int { return len(c.Images) }

// Segment is the rendered video for one chunk.
type Segment struct {
	Chunk    int     // Index of the chunk it was rendered from.
	Path     string  // File in the workspace.
	Images   int     // Images in the chunk.
	Duration float64 // Expected length: Images * per-image duration.
	Probed   float64 // Length reported by ffprobe; 0 when not verified.
}

// FinalVideo is the assembled output of a successful run.
type FinalVideo struct {
	Path     string
	Duration float64 // Sum of the assembled segments' expected durations.
	Probed   float64 // Length reported by ffprobe; 0 when not verified.
	Segments int     // Segments assembled.
	Missing  []int   // Chunk indices that had no segment.
	Verified bool    // Probed duration matched within tolerance.
	Shortcut bool    // A single segment was moved into place without concat.
	Size     int64
}
