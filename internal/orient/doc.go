// Package orient corrects stored pixel rotation before images reach the
// encoder.
//
// The EXIF orientation tag is mapped to a counter-clockwise rotation:
//
//	3 -> 180
//	6 -> 270
//	8 -> 90
//
// Every other value, or no tag, means no rotation. Rotated images are
// re-encoded into the run's workspace; the source file is never written.
// A file whose metadata or pixels cannot be read falls back to the original,
// unrotated path with a warning, so one bad photo never stops a render.
package orient
