package planner

import (
	"errors"
	"fmt"

	"github.com/backmassage/photoreel/internal/domain"
)

// ErrChunkSize is returned by Partition for a chunk size below 1.
var ErrChunkSize = errors.New("chunk size must be at least 1")

// Partition splits images into consecutive chunks of at most size images.
// chunk[i] holds images[i*size : min((i+1)*size, len(images))]; the last
// chunk may be shorter. No image is dropped, duplicated or reordered. Zero
// images yield an empty, non-nil-error result.
func Partition(images []domain.Image, size int) ([]domain.Chunk, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrChunkSize, size)
	}
	chunks := make([]domain.Chunk, 0, (len(images)+size-1)/size)
	for start := 0; start < len(images); start += size {
		end := min(start+size, len(images))
		chunks = append(chunks, domain.Chunk{
			Index:  len(chunks),
			Images: images[start:end:end],
		})
	}
	return chunks, nil
}

// PlanFade picks the fade for position pos of a chunk with n images:
//
//	n == 1        no fade (a fade needs a neighbor)
//	first         fade-out only
//	last          fade-in only
//	interior      fade-in and fade-out
//
// A zero fade length disables fades entirely.
func PlanFade(pos, n int, t domain.Timing) Fade {
	if n < 2 || t.Fade <= 0 {
		return Fade{}
	}
	f := Fade{
		In:       pos > 0,
		Out:      pos < n-1,
		Duration: t.Fade,
	}
	if f.Out {
		f.OutStart = t.PerImage - t.Fade
	}
	return f
}

// PlanChunk returns one Clip per image of ch, in position order. clipPath
// supplies the output path for each position.
func PlanChunk(ch domain.Chunk, t domain.Timing, clipPath func(pos int) string) []Clip {
	n := ch.Len()
	clips := make([]Clip, n)
	for pos, im := range ch.Images {
		clips[pos] = Clip{
			Chunk:    ch.Index,
			Position: pos,
			Image:    im.Path,
			Duration: t.PerImage,
			Fade:     PlanFade(pos, n, t),
			Output:   clipPath(pos),
		}
	}
	return clips
}
