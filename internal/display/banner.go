package display

import (
	"fmt"
	"io"

	"github.com/backmassage/photoreel/internal/term"
)

// PrintBanner writes the ASCII banner to w, in magenta when colors are on.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `       _           _                      _
 _ __ | |__   ___ | |_ ___  _ __ ___  ___| |
| '_ \| '_ \ / _ \| __/ _ \| '__/ _ \/ _ \ |
| |_) | | | | (_) | || (_) | | |  __/  __/ |
| .__/|_| |_|\___/ \__\___/|_|  \___|\___|_|
|_|
`)
	fmt.Fprintln(w, term.NC)
}
