package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is picked up from the working directory when --config is
// not given.
const DefaultFileName = "photoreel.yaml"

// FileConfig mirrors the YAML config file. Pointer fields distinguish "not
// set" from a zero value so that, for example, shuffle: false overrides the
// default.
type FileConfig struct {
	Output     string   `yaml:"output"`
	TempDir    string   `yaml:"temp_dir"`
	Duration   *float64 `yaml:"duration"`
	Fade       *float64 `yaml:"fade"`
	ChunkSize  *int     `yaml:"chunk_size"`
	FirstImage string   `yaml:"first_image"`
	Shuffle    *bool    `yaml:"shuffle"`
	Seed       *int64   `yaml:"seed"`
	Workers    *int     `yaml:"workers"`
	Retries    *int     `yaml:"retries"`
	Resolution string   `yaml:"resolution"`
	FPS        *int     `yaml:"fps"`
	Codec      string   `yaml:"codec"`
	Preset     string   `yaml:"preset"`
	CRF        *int     `yaml:"crf"`
	Verify     *bool    `yaml:"verify"`
	Report     string   `yaml:"report"`
	Color      string   `yaml:"color"`
	Log        string   `yaml:"log"`
}

// LoadFile reads path and overlays every field it sets onto cfg. When
// optional is true a missing file is not an error; this is how the implicit
// photoreel.yaml in the working directory is handled.
func LoadFile(cfg *Config, path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) error {
	if fc.Output != "" {
		cfg.Output = fc.Output
	}
	if fc.TempDir != "" {
		cfg.TempDir = fc.TempDir
	}
	if fc.Duration != nil {
		cfg.DurationPerImage = *fc.Duration
	}
	if fc.Fade != nil {
		cfg.FadeDuration = *fc.Fade
		cfg.FadeSet = true
	}
	if fc.ChunkSize != nil {
		cfg.ChunkSize = *fc.ChunkSize
	}
	if fc.FirstImage != "" {
		cfg.FirstImage = fc.FirstImage
	}
	if fc.Shuffle != nil {
		cfg.Shuffle = *fc.Shuffle
	}
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.Retries != nil {
		cfg.ChunkRetries = *fc.Retries
	}
	if fc.Resolution != "" {
		if err := cfg.ParseResolution(fc.Resolution); err != nil {
			return err
		}
	}
	if fc.FPS != nil {
		cfg.FrameRate = *fc.FPS
	}
	if fc.Codec != "" {
		cfg.VideoCodec = fc.Codec
	}
	if fc.Preset != "" {
		cfg.Preset = fc.Preset
	}
	if fc.CRF != nil {
		cfg.CRF = *fc.CRF
	}
	if fc.Verify != nil {
		cfg.Verify = *fc.Verify
	}
	if fc.Report != "" {
		cfg.ReportPath = fc.Report
	}
	if fc.Color != "" {
		cfg.ColorMode = ColorMode(fc.Color)
	}
	if fc.Log != "" {
		cfg.LogFile = fc.Log
	}
	return nil
}
