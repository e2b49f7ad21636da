// Package probe inspects rendered video files with a single ffprobe JSON
// call and exposes the few properties a render run checks: container
// duration, size, and the primary video stream's geometry, codec and frame
// rate.
package probe
