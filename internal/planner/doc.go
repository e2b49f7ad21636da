// Package planner turns the ordered image sequence into render work: it
// partitions images into chunks, decides the fade filter for every image
// position, and builds the per-clip video filter chain and encoder settings
// that the ffmpeg package turns into arguments.
//
// Nothing here touches the filesystem or runs a process; every function is
// a pure mapping from inputs to a plan.
package planner
