// Package pipeline orchestrates a render run: image discovery, ordering,
// orientation normalization, chunk partitioning, chunk rendering on a
// bounded worker pool, and final assembly. It also owns the run summary,
// the optional YAML report and the inspect table.
//
// A run moves through
//
//	Scanning -> Normalizing -> Partitioning -> Rendering -> Assembling -> Done
//
// and ends in Failed instead when no image is found, the timing is invalid,
// no chunk renders, or the run is canceled. The scratch workspace is
// released on every exit path.
package pipeline
