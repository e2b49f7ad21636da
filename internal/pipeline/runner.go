package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/photoreel/internal/assemble"
	"github.com/backmassage/photoreel/internal/config"
	"github.com/backmassage/photoreel/internal/display"
	"github.com/backmassage/photoreel/internal/domain"
	"github.com/backmassage/photoreel/internal/ffmpeg"
	"github.com/backmassage/photoreel/internal/logging"
	"github.com/backmassage/photoreel/internal/orient"
	"github.com/backmassage/photoreel/internal/planner"
	"github.com/backmassage/photoreel/internal/render"
	"github.com/backmassage/photoreel/internal/workspace"
)

// ErrNoImages is returned when the folder holds no supported image.
var ErrNoImages = errors.New("no image files found")

// stderrTailLines caps how much ffmpeg output is logged for a failed chunk.
const stderrTailLines = 20

// Runner executes one render run. It is not reusable.
type Runner struct {
	cfg    *config.Config
	log    *logging.Logger
	enc    render.MediaEncoder
	prober render.Prober
	state  State
}

// NewRunner returns a Runner rendering with enc.
func NewRunner(cfg *config.Config, log *logging.Logger, enc render.MediaEncoder) *Runner {
	return &Runner{cfg: cfg, log: log, enc: enc}
}

// WithProber enables segment and final duration checks.
func (r *Runner) WithProber(p render.Prober) *Runner {
	r.prober = p
	return r
}

// State returns the stage the run is in or ended in.
func (r *Runner) State() State { return r.state }

// workers is the pool size, at least one whatever the config says.
func (r *Runner) workers() int { return max(1, r.cfg.Workers) }

func (r *Runner) enter(s State) {
	r.state = s
	r.log.Debug("State: %s", s)
}

// Run executes the whole pipeline. Per-image and per-chunk failures are
// logged and absorbed; the returned error is non-nil only for a fatal
// outcome (no images, invalid timing, no chunk rendered, cancellation), in
// which case no output file is written. The report is never nil.
func (r *Runner) Run(ctx context.Context) (rep *Report, err error) {
	start := time.Now()
	rep = &Report{Folder: r.cfg.Folder}
	defer func() {
		rep.Elapsed = time.Since(start).Round(time.Millisecond).String()
		if err != nil {
			r.enter(StateFailed)
			rep.Error = err.Error()
		}
		rep.State = r.state
	}()

	// --- Scanning ---
	r.enter(StateScanning)
	timing := r.cfg.Timing()
	if err := timing.Validate(); err != nil {
		return rep, err
	}
	paths, err := Discover(r.cfg.Folder)
	if err != nil {
		return rep, fmt.Errorf("scan %s: %w", r.cfg.Folder, err)
	}
	if len(paths) == 0 {
		return rep, fmt.Errorf("%w in %s", ErrNoImages, r.cfg.Folder)
	}
	paths, rep.Seed = Order(paths, OrderOptions{
		Shuffle: r.cfg.Shuffle,
		Seed:    r.cfg.Seed,
		First:   r.cfg.FirstImage,
	}, r.log)
	rep.Stats.Images = len(paths)
	r.logRunHeader(rep)

	ws, err := workspace.New(r.cfg.TempDir)
	if err != nil {
		return rep, err
	}
	defer func() {
		if rerr := ws.Release(); rerr != nil {
			r.log.Warn("Cannot remove workspace %s: %v", ws.Root(), rerr)
		}
	}()
	r.log.Debug("Workspace: %s", ws.Root())

	// --- Normalizing ---
	r.enter(StateNormalizing)
	images, err := r.normalize(ctx, ws, paths)
	if err != nil {
		return rep, err
	}
	for _, im := range images {
		if im.Rotated() {
			rep.Stats.Rotated++
		}
		if im.Fallback {
			rep.Stats.Fallbacks++
		}
	}

	// --- Partitioning ---
	r.enter(StatePartitioning)
	chunks, err := planner.Partition(images, r.cfg.ChunkSize)
	if err != nil {
		return rep, err
	}
	rep.Stats.Chunks = len(chunks)
	r.log.Info("Rendering %d chunk(s) of up to %d image(s) with %d worker(s)",
		len(chunks), r.cfg.ChunkSize, min(r.workers(), len(chunks)))

	// --- Rendering ---
	r.enter(StateRendering)
	renderer := render.NewRenderer(r.enc, ws, timing, r.log)
	if r.prober != nil {
		renderer.WithProber(r.prober)
	}
	results := r.renderAll(ctx, renderer, chunks)
	r.collect(rep, chunks, results)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// --- Assembling ---
	r.enter(StateAssembling)
	asm := assemble.NewAssembler(r.enc, ws, timing, r.log)
	if r.prober != nil {
		asm.WithProber(r.prober)
	}
	fv, err := asm.Assemble(ctx, results, r.cfg.Output)
	if err != nil {
		return rep, err
	}
	rep.Output = fv.Path
	rep.Missing = fv.Missing
	rep.Expected = fv.Duration
	rep.Probed = fv.Probed
	rep.Verified = fv.Verified
	rep.Size = fv.Size

	r.enter(StateDone)
	r.logSummary(rep, time.Since(start))
	return rep, nil
}

// normalize corrects orientation for every image on the worker pool. The
// result is indexed like paths.
func (r *Runner) normalize(ctx context.Context, ws *workspace.Workspace, paths []string) ([]domain.Image, error) {
	n := orient.NewNormalizer(ws, r.log)
	images := make([]domain.Image, len(paths))

	var g errgroup.Group
	g.SetLimit(r.workers())
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			images[i] = n.Normalize(i, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// renderAll renders every chunk on the worker pool and waits for all of
// them to finish. results[i] belongs to chunks[i] whatever the completion
// order.
func (r *Runner) renderAll(ctx context.Context, renderer *render.Renderer, chunks []domain.Chunk) []render.Result {
	results := make([]render.Result, len(chunks))

	var g errgroup.Group
	g.SetLimit(r.workers())
	for i, ch := range chunks {
		g.Go(func() error {
			res := renderer.Render(ctx, ch, r.cfg.ChunkRetries)
			results[i] = res
			if res.OK() {
				r.log.Success("Chunk %d/%d rendered in %s", ch.Index+1, len(chunks),
					display.FormatSeconds(res.Elapsed.Seconds()))
			} else if ctx.Err() == nil {
				r.log.Warn("Chunk %d/%d failed, its %d image(s) will be missing: %v",
					ch.Index+1, len(chunks), ch.Len(), res.Err)
				r.logStderr(res.Err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// collect fills the per-chunk part of the report.
func (r *Runner) collect(rep *Report, chunks []domain.Chunk, results []render.Result) {
	rep.Chunks = make([]ChunkReport, len(results))
	for i, res := range results {
		cr := ChunkReport{
			Index:    res.Chunk,
			Images:   chunks[i].Len(),
			Duration: r.cfg.Timing().ChunkDuration(chunks[i].Len()),
			Attempts: res.Attempts,
			Elapsed:  res.Elapsed.Round(time.Millisecond).String(),
		}
		if res.OK() {
			cr.Probed = res.Segment.Probed
			rep.Stats.Rendered++
			rep.Stats.ImagesInOutput += cr.Images
		} else {
			cr.Error = res.Err.Error()
			rep.Stats.Failed++
		}
		if res.Attempts > 1 {
			rep.Stats.Retried++
		}
		rep.Chunks[i] = cr
	}
}

// logStderr logs the tail of ffmpeg's output for a failed chunk.
func (r *Runner) logStderr(err error) {
	var ee *ffmpeg.ExecError
	if !errors.As(err, &ee) || ee.Stderr == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(ee.Stderr), "\n")
	start := 0
	if len(lines) > stderrTailLines {
		start = len(lines) - stderrTailLines
	}
	r.log.Warn("Last ffmpeg output:")
	for _, l := range lines[start:] {
		r.log.Warn("  %s", l)
	}
}

// --- Logging helpers ---

func (r *Runner) logRunHeader(rep *Report) {
	cfg := r.cfg
	r.log.Info("Found %d image(s) in %s", rep.Stats.Images, cfg.Folder)
	switch {
	case cfg.Shuffle:
		r.log.Info("Order: shuffled (seed %d)", rep.Seed)
	default:
		r.log.Info("Order: natural file name order")
	}
	if cfg.FirstImage != "" {
		r.log.Debug("First image: %s", cfg.FirstImage)
	}
	r.log.Info("Timing: %ss per image, %ss fade, chunks of %d",
		planner.Seconds(cfg.DurationPerImage), planner.Seconds(cfg.FadeDuration), cfg.ChunkSize)
	r.log.Info("Video: %s @ %d fps, %s (%s, crf %d), %s",
		cfg.Resolution(), cfg.FrameRate, cfg.VideoCodec, cfg.Preset, cfg.CRF, cfg.PixFmt)
	if cfg.ChunkRetries > 0 {
		r.log.Debug("Retry policy: up to %d extra attempt(s) per chunk on transient failures", cfg.ChunkRetries)
	}
}

func (r *Runner) logSummary(rep *Report, elapsed time.Duration) {
	s := rep.Stats
	if s.Complete() {
		r.log.Success("Video created: %s", rep.Output)
	} else {
		r.log.Warn("Video created with %d of %d chunk(s): %s", s.Rendered, s.Chunks, rep.Output)
	}
	r.log.Info("  Images:   %d of %d (%d rotated, %d unrotated after errors)",
		s.ImagesInOutput, s.Images, s.Rotated, s.Fallbacks)
	dur := display.FormatSeconds(rep.Expected)
	if rep.Probed > 0 {
		dur += fmt.Sprintf(" (probed %s)", display.FormatSeconds(rep.Probed))
	}
	r.log.Info("  Duration: %s", dur)
	r.log.Info("  Size:     %s", display.FormatBytes(rep.Size))
	r.log.Info("  Elapsed:  %s", display.FormatSeconds(elapsed.Seconds()))
	r.log.Debug("Output directory: %s", filepath.Dir(rep.Output))
}
