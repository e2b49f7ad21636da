package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/backmassage/photoreel/internal/config"
	"github.com/backmassage/photoreel/internal/display"
	"github.com/backmassage/photoreel/internal/logging"
	"github.com/backmassage/photoreel/internal/orient"
	"github.com/backmassage/photoreel/internal/term"
)

// imageRow holds the per-image data for the inspect table.
type imageRow struct {
	Name        string
	Format      string
	Size        string
	Orientation string
	Rotation    string
	Note        string
	rotated     bool
	bad         bool
}

// Inspect lists the images a run over cfg.Folder would use, in discovery
// order, with their dimensions, orientation tag and the rotation that
// normalization will apply. It touches no file and renders nothing.
func Inspect(ctx context.Context, cfg *config.Config, log *logging.Logger, w io.Writer) error {
	files, err := Discover(cfg.Folder)
	if err != nil {
		return fmt.Errorf("scan %s: %w", cfg.Folder, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoImages, cfg.Folder)
	}
	log.Info("Inspecting %d image(s) in %s", len(files), cfg.Folder)

	rows := make([]imageRow, 0, len(files))
	var rotated, unreadable int
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("Interrupted")
			return err
		}
		info := orient.Inspect(path)
		row := imageRow{Name: filepath.Base(path), Format: "-", Size: "-", Orientation: "-", Rotation: "-"}
		if info.Format != "" {
			row.Format = info.Format
			row.Size = fmt.Sprintf("%dx%d", info.Width, info.Height)
		}
		if info.Orientation != 0 {
			row.Orientation = fmt.Sprint(info.Orientation)
		}
		if info.Rotation != 0 {
			row.Rotation = fmt.Sprintf("%d° ccw", info.Rotation)
			row.rotated = true
			rotated++
		}
		if info.Err != nil {
			row.Note = "unreadable, used as-is"
			row.bad = true
			unreadable++
			log.Debug("%s: %v", row.Name, info.Err)
		}
		rows = append(rows, row)
	}

	printImageTable(w, rows)

	timing := cfg.Timing()
	chunks := (len(files) + cfg.ChunkSize - 1) / cfg.ChunkSize
	log.Info("%d image(s), %d to rotate, %d unreadable", len(files), rotated, unreadable)
	log.Info("Expected video: %s in %d chunk(s)",
		display.FormatSeconds(timing.ChunkDuration(len(files))), chunks)
	return nil
}

func printImageTable(w io.Writer, rows []imageRow) {
	headers := []string{"File", "Format", "Size", "EXIF", "Rotation"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r.cells() {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if widths[0] > 50 {
		widths[0] = 50
	}

	var header strings.Builder
	for i, h := range headers {
		header.WriteString("  " + pad(h, widths[i]))
	}
	fmt.Fprintln(w, header.String())
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header.String())-2))

	for _, r := range rows {
		cells := r.cells()
		name := cells[0]
		if len([]rune(name)) > widths[0] {
			name = string([]rune(name)[:widths[0]-1]) + "…"
		}
		var line strings.Builder
		line.WriteString("  " + pad(name, widths[0]))
		for i := 1; i < len(cells); i++ {
			// Pad the plain text first, then color it, so escape bytes do
			// not count toward the column width.
			cell := pad(cells[i], widths[i])
			if i == 4 && r.rotated {
				cell = term.Paint(term.Yellow, cell)
			}
			line.WriteString("  " + cell)
		}
		if r.bad {
			line.WriteString("  " + term.Paint(term.Red, r.Note))
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
	fmt.Fprintln(w)
}

func (r imageRow) cells() []string {
	return []string{r.Name, r.Format, r.Size, r.Orientation, r.Rotation}
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
