// Command photoreel turns a folder of photos into a crossfaded slideshow
// video. Rendering is split into chunks that are encoded independently and
// joined with a stream copy, so one bad image or chunk never sinks the run.
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	root := newRootCmd()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
