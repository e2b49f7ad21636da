package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Report summarizes one run. It is returned by [Runner.Run] on every exit
// path and can be written as YAML with [WriteReport].
type Report struct {
	State    State         `yaml:"state"`
	Folder   string        `yaml:"folder"`
	Output   string        `yaml:"output,omitempty"`
	Seed     int64         `yaml:"seed,omitempty"`
	Stats    RunStats      `yaml:"stats"`
	Chunks   []ChunkReport `yaml:"chunks,omitempty"`
	Missing  []int         `yaml:"missing_chunks,omitempty"`
	Expected float64       `yaml:"expected_duration"`
	Probed   float64       `yaml:"probed_duration,omitempty"`
	Verified bool          `yaml:"verified"`
	Size     int64         `yaml:"size_bytes,omitempty"`
	Elapsed  string        `yaml:"elapsed"`
	Error    string        `yaml:"error,omitempty"`
}

// ChunkReport is the outcome of one chunk.
type ChunkReport struct {
	Index    int     `yaml:"index"`
	Images   int     `yaml:"images"`
	Duration float64 `yaml:"duration"`
	Probed   float64 `yaml:"probed,omitempty"`
	Attempts int     `yaml:"attempts"`
	Elapsed  string  `yaml:"elapsed"`
	Error    string  `yaml:"error,omitempty"`
}

// WriteReport encodes rep as YAML to path, creating parent directories.
func WriteReport(path string, rep *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
