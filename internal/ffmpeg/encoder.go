package ffmpeg

import (
	"context"
	"os"

	"github.com/backmassage/photoreel/internal/planner"
)

// Encoder renders clips and joins files by running ffmpeg. It holds no
// per-call state and is safe for concurrent use by chunk workers.
type Encoder struct {
	enc     planner.Encoding
	verbose bool
	exec    func(ctx context.Context, args []string, verbose bool) ExecResult
}

// NewEncoder returns an Encoder producing clips with enc's parameters.
func NewEncoder(enc planner.Encoding, verbose bool) *Encoder {
	return &Encoder{enc: enc, verbose: verbose, exec: Execute}
}

// RenderStill encodes one image into c.Output with no fade.
func (e *Encoder) RenderStill(ctx context.Context, c planner.Clip) error {
	c.Fade = planner.Fade{}
	return e.renderClip(ctx, c)
}

// RenderFade encodes one image into c.Output with the fades in c.Fade.
func (e *Encoder) RenderFade(ctx context.Context, c planner.Clip) error {
	return e.renderClip(ctx, c)
}

// renderClip runs the clip encode. A partial output is removed on failure.
func (e *Encoder) renderClip(ctx context.Context, c planner.Clip) error {
	res := e.exec(ctx, ClipArgs(e.enc, c, e.verbose), e.verbose)
	if res.Err != nil {
		_ = os.Remove(c.Output)
		return &ExecError{Op: "clip", Output: c.Output, Stderr: res.Stderr, Err: res.Err}
	}
	return nil
}

// Concat writes the list file for c and stream-copies its inputs into
// c.Output. A partial output is removed on failure.
func (e *Encoder) Concat(ctx context.Context, c planner.Concat) error {
	if err := WriteConcatList(c.ListPath, c.Inputs); err != nil {
		return err
	}
	res := e.exec(ctx, ConcatArgs(c, e.verbose), e.verbose)
	if res.Err != nil {
		_ = os.Remove(c.Output)
		return &ExecError{Op: "concat", Output: c.Output, Stderr: res.Stderr, Err: res.Err}
	}
	return nil
}
