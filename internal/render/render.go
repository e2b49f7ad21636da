package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/photoreel/internal/display"
	"github.com/backmassage/photoreel/internal/domain"
	"github.com/backmassage/photoreel/internal/ffmpeg"
	"github.com/backmassage/photoreel/internal/planner"
)

// ErrEmptyChunk is returned for a chunk with no images.
var ErrEmptyChunk = errors.New("chunk has no images")

// MediaEncoder produces clips and joins them, one method per operation.
// [ffmpeg.Encoder] is the production implementation.
type MediaEncoder interface {
	// RenderStill encodes c.Image for c.Duration seconds with no fade.
	RenderStill(ctx context.Context, c planner.Clip) error
	// RenderFade encodes c.Image with the ramps described by c.Fade.
	RenderFade(ctx context.Context, c planner.Clip) error
	// Concat joins c.Inputs in order without re-encoding.
	Concat(ctx context.Context, c planner.Concat) error
}

// Prober measures a rendered file. [probe.FFprobe] is the production
// implementation.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Paths allocates the per-chunk files in the workspace.
type Paths interface {
	PrepareChunk(chunk int) error
	ClipPath(chunk, pos int) string
	ChunkListPath(chunk int) string
	SegmentPath(chunk int) string
	DiscardChunk(chunk int) error
}

// Logger is the subset of the logger the renderer needs.
type Logger interface {
	Render(string, ...interface{})
	Warn(string, ...interface{})
	Debug(string, ...interface{})
}

// Result is the outcome of rendering one chunk. Exactly one of Segment and
// Err is meaningful.
type Result struct {
	Chunk    int
	Segment  domain.Segment
	Err      error
	Attempts int
	Elapsed  time.Duration
}

// OK reports whether the chunk produced a segment.
func (r Result) OK() bool { return r.Err == nil }

// Renderer renders chunks with a fixed timing.
type Renderer struct {
	enc     MediaEncoder
	paths   Paths
	timing  domain.Timing
	log     Logger
	prober  Prober
	backoff time.Duration
}

// NewRenderer returns a Renderer. Segment durations are only verified once a
// prober is attached with [Renderer.WithProber].
func NewRenderer(enc MediaEncoder, paths Paths, t domain.Timing, log Logger) *Renderer {
	return &Renderer{enc: enc, paths: paths, timing: t, log: log}
}

// WithProber enables duration checks on every finished segment.
func (r *Renderer) WithProber(p Prober) *Renderer {
	r.prober = p
	return r
}

// Render renders ch, retrying transient encoder failures up to retries extra
// times with exponential backoff.
func (r *Renderer) Render(ctx context.Context, ch domain.Chunk, retries int) Result {
	start := time.Now()
	rs := ffmpeg.NewRetryState(retries)
	if r.backoff > 0 {
		rs.Backoff = r.backoff
	}

	for {
		seg, err := r.RenderChunk(ctx, ch)
		if err == nil {
			return Result{Chunk: ch.Index, Segment: seg, Attempts: rs.Attempt + 1, Elapsed: time.Since(start)}
		}
		delay, again := rs.Advance(err)
		if !again || ctx.Err() != nil {
			return Result{Chunk: ch.Index, Err: err, Attempts: rs.Attempt, Elapsed: time.Since(start)}
		}
		r.log.Warn("Chunk %d: transient failure (%v), retrying in %s", ch.Index, err, delay)
		select {
		case <-ctx.Done():
			return Result{Chunk: ch.Index, Err: ctx.Err(), Attempts: rs.Attempt, Elapsed: time.Since(start)}
		case <-time.After(delay):
		}
	}
}

// RenderChunk makes one attempt at ch. A single-image chunk is encoded
// straight into its segment with no fade; otherwise each image becomes a
// clip and the clips are joined in position order. Intermediate clips are
// removed whether or not the attempt succeeds, and a failed attempt leaves
// no segment file behind.
func (r *Renderer) RenderChunk(ctx context.Context, ch domain.Chunk) (domain.Segment, error) {
	if err := r.timing.Validate(); err != nil {
		return domain.Segment{}, err
	}
	n := ch.Len()
	if n == 0 {
		return domain.Segment{}, fmt.Errorf("chunk %d: %w", ch.Index, ErrEmptyChunk)
	}
	if err := r.paths.PrepareChunk(ch.Index); err != nil {
		return domain.Segment{}, fmt.Errorf("chunk %d: %w", ch.Index, err)
	}
	defer func() {
		if err := r.paths.DiscardChunk(ch.Index); err != nil {
			r.log.Debug("Chunk %d: cleanup: %v", ch.Index, err)
		}
	}()

	segPath := r.paths.SegmentPath(ch.Index)
	clips := planner.PlanChunk(ch, r.timing, func(pos int) string {
		return r.paths.ClipPath(ch.Index, pos)
	})
	if n == 1 {
		clips[0].Output = segPath
	}

	r.log.Render("Chunk %d: %d image(s), %s", ch.Index, n, display.FormatSeconds(r.timing.ChunkDuration(n)))
	for _, c := range clips {
		if err := ctx.Err(); err != nil {
			return domain.Segment{}, err
		}
		r.log.Debug("Chunk %d: clip %d/%d %s (fade in=%v out=%v)",
			ch.Index, c.Position+1, n, filepath.Base(c.Image), c.Fade.In, c.Fade.Out)
		if err := r.renderClip(ctx, c); err != nil {
			_ = os.Remove(segPath)
			return domain.Segment{}, fmt.Errorf("chunk %d image %s: %w", ch.Index, filepath.Base(ch.Images[c.Position].Source), err)
		}
	}

	if n > 1 {
		inputs := make([]string, n)
		for i, c := range clips {
			inputs[i] = c.Output
		}
		join := planner.Concat{
			Inputs:   inputs,
			ListPath: r.paths.ChunkListPath(ch.Index),
			Output:   segPath,
		}
		if err := r.enc.Concat(ctx, join); err != nil {
			_ = os.Remove(segPath)
			return domain.Segment{}, fmt.Errorf("chunk %d concat: %w", ch.Index, err)
		}
	}

	seg := domain.Segment{
		Chunk:    ch.Index,
		Path:     segPath,
		Images:   n,
		Duration: r.timing.ChunkDuration(n),
	}
	r.verify(ctx, &seg)
	return seg, nil
}

func (r *Renderer) renderClip(ctx context.Context, c planner.Clip) error {
	if c.Fade.None() {
		return r.enc.RenderStill(ctx, c)
	}
	return r.enc.RenderFade(ctx, c)
}

// verify records the probed duration and warns when it drifts by more than
// a frame. A mismatch never fails the chunk.
func (r *Renderer) verify(ctx context.Context, seg *domain.Segment) {
	if r.prober == nil {
		return
	}
	d, err := r.prober.Duration(ctx, seg.Path)
	if err != nil {
		r.log.Warn("Chunk %d: cannot verify duration: %v", seg.Chunk, err)
		return
	}
	seg.Probed = d
	if !r.timing.Within(d, seg.Duration) {
		r.log.Warn("Chunk %d: segment is %.3fs, expected %.3fs", seg.Chunk, d, seg.Duration)
	}
}
