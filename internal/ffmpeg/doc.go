// Package ffmpeg builds and runs the ffmpeg commands behind a render: one
// encode per image clip and one stream-copy concat per segment or final
// video.
//
// Files:
//   - builder.go: argument slices for clip encodes and concat joins, and the
//     concat-demuxer list writer.
//   - executor.go: process execution with stderr capture and the typed
//     [ExecError].
//   - errors.go: stderr classification into transient and permanent
//     failures.
//   - retry.go: [RetryState], bounded exponential backoff for transient
//     failures.
//   - encoder.go: [Encoder], the production implementation of the renderer's
//     media encoder.
package ffmpeg
