package assemble

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/backmassage/photoreel/internal/domain"
	"github.com/backmassage/photoreel/internal/logging"
	"github.com/backmassage/photoreel/internal/planner"
	"github.com/backmassage/photoreel/internal/render"
	"github.com/backmassage/photoreel/internal/workspace"
)

type catJoiner struct {
	calls []planner.Concat
	err   error
}

func (j *catJoiner) Concat(_ context.Context, c planner.Concat) error {
	j.calls = append(j.calls, c)
	if j.err != nil {
		return j.err
	}
	var buf bytes.Buffer
	for _, in := range c.Inputs {
		b, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return os.WriteFile(c.Output, buf.Bytes(), 0o644)
}

type fixedProber float64

func (p fixedProber) Duration(context.Context, string) (float64, error) { return float64(p), nil }

var timing = domain.Timing{PerImage: 3, Fade: 1, FrameRate: 30}

func setup(t *testing.T) (*workspace.Workspace, *bytes.Buffer) {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ws.Release() })
	return ws, &bytes.Buffer{}
}

// okResult writes a fake segment for chunk holding n images.
func okResult(t *testing.T, ws *workspace.Workspace, chunk, n int) render.Result {
	t.Helper()
	path := ws.SegmentPath(chunk)
	if err := os.WriteFile(path, []byte{byte('A' + chunk)}, 0o644); err != nil {
		t.Fatal(err)
	}
	return render.Result{Chunk: chunk, Segment: domain.Segment{
		Chunk: chunk, Path: path, Images: n, Duration: timing.ChunkDuration(n),
	}}
}

func failed(chunk int) render.Result {
	return render.Result{Chunk: chunk, Err: errors.New("boom")}
}

func TestAssemble_OrdersByChunkIndex(t *testing.T) {
	ws, logBuf := setup(t)
	// Completion order differs from chunk order.
	results := []render.Result{okResult(t, ws, 2, 3), okResult(t, ws, 0, 10), okResult(t, ws, 1, 10)}
	out := filepath.Join(t.TempDir(), "nested", "show.mp4")
	j := &catJoiner{}

	fv, err := NewAssembler(j, ws, timing, logging.NewWriterLogger(logBuf, false)).
		WithProber(fixedProber(69)).
		Assemble(context.Background(), results, out)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "ABC" {
		t.Errorf("output = %q, want segments in chunk order ABC", b)
	}
	if fv.Duration != 69 || fv.Segments != 3 || fv.Shortcut || len(fv.Missing) != 0 {
		t.Errorf("final = %+v", fv)
	}
	if !fv.Verified || fv.Probed != 69 || fv.Size != 3 {
		t.Errorf("verification = %+v", fv)
	}
	if len(j.calls) != 1 || !j.calls[0].Faststart {
		t.Errorf("concat calls = %+v", j.calls)
	}
}

func TestAssemble_PartialFailure(t *testing.T) {
	ws, logBuf := setup(t)
	results := []render.Result{failed(1), okResult(t, ws, 2, 3), okResult(t, ws, 0, 10), failed(3)}
	out := filepath.Join(t.TempDir(), "out.mkv")
	j := &catJoiner{}

	fv, err := NewAssembler(j, ws, timing, logging.NewWriterLogger(logBuf, false)).
		Assemble(context.Background(), results, out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fv.Missing, []int{1, 3}) {
		t.Errorf("Missing = %v", fv.Missing)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "AC" {
		t.Errorf("output = %q, want AC", b)
	}
	if fv.Duration != 39 {
		t.Errorf("Duration = %v, want 39", fv.Duration)
	}
	if j.calls[0].Faststart {
		t.Error("faststart only applies to mp4-family outputs")
	}
	if !strings.Contains(logBuf.String(), "missing chunk(s) 1, 3") {
		t.Errorf("log: %s", logBuf.String())
	}
}

func TestAssemble_SingleSegmentShortcut(t *testing.T) {
	ws, logBuf := setup(t)
	res := okResult(t, ws, 0, 4)
	out := filepath.Join(t.TempDir(), "out.mp4")
	j := &catJoiner{}

	fv, err := NewAssembler(j, ws, timing, logging.NewWriterLogger(logBuf, false)).
		Assemble(context.Background(), []render.Result{res}, out)
	if err != nil {
		t.Fatal(err)
	}
	if !fv.Shortcut || len(j.calls) != 0 {
		t.Errorf("expected move without concat: %+v calls=%d", fv, len(j.calls))
	}
	if _, err := os.Stat(res.Segment.Path); !os.IsNotExist(err) {
		t.Error("segment should have been moved, not copied")
	}
	if b, _ := os.ReadFile(out); string(b) != "A" {
		t.Errorf("output = %q", b)
	}
}

func TestAssemble_SingleSegmentOtherContainer(t *testing.T) {
	ws, logBuf := setup(t)
	res := okResult(t, ws, 0, 4)
	out := filepath.Join(t.TempDir(), "out.mkv")
	j := &catJoiner{}

	fv, err := NewAssembler(j, ws, timing, logging.NewWriterLogger(logBuf, false)).
		Assemble(context.Background(), []render.Result{res}, out)
	if err != nil {
		t.Fatal(err)
	}
	if fv.Shortcut {
		t.Error("an .mkv output must be remuxed, not moved")
	}
	if len(j.calls) != 1 || len(j.calls[0].Inputs) != 1 || j.calls[0].Faststart {
		t.Fatalf("concat calls = %+v", j.calls)
	}
	if filepath.Ext(j.calls[0].Output) != ".mkv" {
		t.Errorf("joined into %s, want an .mkv file", j.calls[0].Output)
	}
	if b, _ := os.ReadFile(out); string(b) != "A" {
		t.Errorf("output = %q", b)
	}
}

func TestAssemble_NoSegments(t *testing.T) {
	ws, logBuf := setup(t)
	out := filepath.Join(t.TempDir(), "out.mp4")
	_, err := NewAssembler(&catJoiner{}, ws, timing, logging.NewWriterLogger(logBuf, false)).
		Assemble(context.Background(), []render.Result{failed(0), failed(1)}, out)
	if !errors.Is(err, ErrNoSegments) {
		t.Fatalf("err = %v, want ErrNoSegments", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output file may exist after a fatal assembly")
	}

	if _, err := NewAssembler(&catJoiner{}, ws, timing, logging.NewWriterLogger(logBuf, false)).
		Assemble(context.Background(), nil, out); !errors.Is(err, ErrNoSegments) {
		t.Errorf("nil results: err = %v", err)
	}
}

func TestAssemble_JoinFailureLeavesNoOutput(t *testing.T) {
	ws, logBuf := setup(t)
	results := []render.Result{okResult(t, ws, 0, 2), okResult(t, ws, 1, 2)}
	out := filepath.Join(t.TempDir(), "out.mp4")
	j := &catJoiner{err: errors.New("concat failed")}
	if _, err := NewAssembler(j, ws, timing, logging.NewWriterLogger(logBuf, false)).
		Assemble(context.Background(), results, out); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output must not exist after a failed join")
	}
}

func TestAssemble_DurationMismatchWarns(t *testing.T) {
	ws, logBuf := setup(t)
	results := []render.Result{okResult(t, ws, 0, 2), okResult(t, ws, 1, 2)}
	out := filepath.Join(t.TempDir(), "out.mp4")
	fv, err := NewAssembler(&catJoiner{}, ws, timing, logging.NewWriterLogger(logBuf, false)).
		WithProber(fixedProber(11)).
		Assemble(context.Background(), results, out)
	if err != nil {
		t.Fatal(err)
	}
	if fv.Verified {
		t.Error("11s against 12s expected must not verify")
	}
	if !strings.Contains(logBuf.String(), "[WARN] Final video is 11.000s, expected 12.000s") {
		t.Errorf("log: %s", logBuf.String())
	}
}

type describingProber struct{ fixedProber }

func (describingProber) Describe(context.Context, string) (string, error) {
	return "1920x1080 h264 yuv420p @ 30.00 fps", nil
}

func TestAssemble_LogsStreamSummary(t *testing.T) {
	ws, logBuf := setup(t)
	results := []render.Result{okResult(t, ws, 0, 2), okResult(t, ws, 1, 2)}
	out := filepath.Join(t.TempDir(), "out.mp4")
	fv, err := NewAssembler(&catJoiner{}, ws, timing, logging.NewWriterLogger(logBuf, true)).
		WithProber(describingProber{fixedProber(12)}).
		Assemble(context.Background(), results, out)
	if err != nil {
		t.Fatal(err)
	}
	if !fv.Verified {
		t.Error("12s against 12s expected should verify")
	}
	if !strings.Contains(logBuf.String(), "[DEBUG] Output stream: 1920x1080 h264 yuv420p @ 30.00 fps") {
		t.Errorf("log: %s", logBuf.String())
	}
}
