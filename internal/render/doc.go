// Package render turns one chunk of normalized images into one segment:
// a clip per image with the fades planned for its position, then a
// stream-copy join of the clips. Chunks share nothing but the encoder and
// the workspace path allocator, so any number of them may render at once.
package render
