package pipeline

// RunStats tracks aggregate counters across a render run.
type RunStats struct {
	Images         int `yaml:"images"`
	Rotated        int `yaml:"rotated"`
	Fallbacks      int `yaml:"fallbacks"` // Used unrotated because normalization failed.
	Chunks         int `yaml:"chunks"`
	Rendered       int `yaml:"rendered"`
	Failed         int `yaml:"failed"`
	Retried        int `yaml:"retried"` // Chunks that needed more than one attempt.
	ImagesInOutput int `yaml:"images_in_output"`
}

// Complete reports whether every chunk made it into the output.
func (s *RunStats) Complete() bool {
	return s.Chunks > 0 && s.Rendered == s.Chunks
}
