// Package assemble joins rendered segments into the final video in chunk
// order, regardless of the order in which the segments finished.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/photoreel/internal/domain"
	"github.com/backmassage/photoreel/internal/planner"
	"github.com/backmassage/photoreel/internal/render"
	"github.com/backmassage/photoreel/internal/workspace"
)

// ErrNoSegments is returned when no chunk produced a segment. No output file
// is written in that case.
var ErrNoSegments = errors.New("no segments to assemble")

// Joiner stream-copies files together.
type Joiner interface {
	Concat(ctx context.Context, c planner.Concat) error
}

// Describer is implemented by probers that can summarise a file's video
// stream. The summary is logged at debug level after verification.
type Describer interface {
	Describe(ctx context.Context, path string) (string, error)
}

// Paths allocates the assembly files in the workspace.
type Paths interface {
	FinalListPath() string
	FinalPath(ext string) string
}

// Logger is the subset of the logger the assembler needs.
type Logger interface {
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Debug(string, ...interface{})
}

// faststartExts are the containers whose moov atom can be moved to the front.
var faststartExts = map[string]bool{".mp4": true, ".m4v": true, ".mov": true}

// Assembler builds the final video.
type Assembler struct {
	join   Joiner
	paths  Paths
	timing domain.Timing
	log    Logger
	prober render.Prober
}

// NewAssembler returns an Assembler. The final duration is only verified
// once a prober is attached with [Assembler.WithProber].
func NewAssembler(join Joiner, paths Paths, t domain.Timing, log Logger) *Assembler {
	return &Assembler{join: join, paths: paths, timing: t, log: log}
}

// WithProber enables the duration check on the final video.
func (a *Assembler) WithProber(p render.Prober) *Assembler {
	a.prober = p
	return a
}

// Assemble joins the successful results in ascending chunk order and moves
// the joined file to output. Failed chunks are reported in Missing; their
// images are simply absent from the video. A single segment whose container
// matches output's extension is moved into place without a join.
func (a *Assembler) Assemble(ctx context.Context, results []render.Result, output string) (domain.FinalVideo, error) {
	segs, missing := Order(results)
	if len(segs) == 0 {
		return domain.FinalVideo{}, fmt.Errorf("%w (%d chunk(s) failed)", ErrNoSegments, len(missing))
	}
	if len(missing) > 0 {
		a.log.Warn("Assembling %d of %d segments; missing chunk(s) %s",
			len(segs), len(segs)+len(missing), joinInts(missing))
	}

	fv := domain.FinalVideo{
		Path:     output,
		Segments: len(segs),
		Missing:  missing,
	}
	for _, s := range segs {
		fv.Duration += s.Duration
	}

	ext := strings.ToLower(filepath.Ext(output))
	// A lone segment is moved as is only when its container matches the
	// output's; otherwise it is remuxed like any other join.
	if len(segs) == 1 && ext == strings.ToLower(filepath.Ext(segs[0].Path)) {
		a.log.Debug("Single segment, moving into place")
		if err := workspace.Move(segs[0].Path, output); err != nil {
			return domain.FinalVideo{}, fmt.Errorf("move segment to %s: %w", output, err)
		}
		fv.Shortcut = true
	} else {
		inputs := make([]string, len(segs))
		for i, s := range segs {
			inputs[i] = s.Path
		}
		join := planner.Concat{
			Inputs:    inputs,
			ListPath:  a.paths.FinalListPath(),
			Output:    a.paths.FinalPath(ext),
			Faststart: faststartExts[ext],
		}
		a.log.Info("Joining %d segment(s)", len(segs))
		if err := a.join.Concat(ctx, join); err != nil {
			return domain.FinalVideo{}, fmt.Errorf("assemble: %w", err)
		}
		if err := workspace.Move(join.Output, output); err != nil {
			return domain.FinalVideo{}, fmt.Errorf("move output to %s: %w", output, err)
		}
	}

	if fi, err := os.Stat(output); err == nil {
		fv.Size = fi.Size()
	}
	a.verify(ctx, &fv)
	return fv, nil
}

// Order returns the segments of the successful results sorted by chunk
// index, and the sorted indices of the chunks that failed.
func Order(results []render.Result) ([]domain.Segment, []int) {
	var segs []domain.Segment
	var missing []int
	for _, r := range results {
		if r.OK() {
			segs = append(segs, r.Segment)
		} else {
			missing = append(missing, r.Chunk)
		}
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Chunk < segs[j].Chunk })
	sort.Ints(missing)
	return segs, missing
}

func (a *Assembler) verify(ctx context.Context, fv *domain.FinalVideo) {
	if a.prober == nil {
		return
	}
	d, err := a.prober.Duration(ctx, fv.Path)
	if err != nil {
		a.log.Warn("Cannot verify final duration: %v", err)
		return
	}
	fv.Probed = d
	fv.Verified = a.timing.Within(d, fv.Duration)
	if !fv.Verified {
		a.log.Warn("Final video is %.3fs, expected %.3fs", d, fv.Duration)
	}
	if desc, ok := a.prober.(Describer); ok {
		if s, err := desc.Describe(ctx, fv.Path); err == nil {
			a.log.Debug("Output stream: %s", s)
		}
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
