package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "PHOTOREEL_"

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays PHOTOREEL_* variables onto cfg. lookup is normally
// os.LookupEnv; tests pass a map-backed function.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("OUTPUT"); ok {
		cfg.Output = v
	}
	if v, ok := get("TEMP_DIR"); ok {
		cfg.TempDir = v
	}
	if v, ok := get("DURATION"); ok {
		f, err := parseFloat(v, EnvPrefix+"DURATION")
		if err != nil {
			return err
		}
		cfg.DurationPerImage = f
	}
	if v, ok := get("FADE"); ok {
		f, err := parseFloat(v, EnvPrefix+"FADE")
		if err != nil {
			return err
		}
		cfg.FadeDuration = f
		cfg.FadeSet = true
	}
	if v, ok := get("CHUNK_SIZE"); ok {
		n, err := parseInt(v, EnvPrefix+"CHUNK_SIZE")
		if err != nil {
			return err
		}
		cfg.ChunkSize = n
	}
	if v, ok := get("SHUFFLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSHUFFLE must be true or false (got %q)", EnvPrefix, v)
		}
		cfg.Shuffle = b
	}
	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED must be a whole number (got %q)", EnvPrefix, v)
		}
		cfg.Seed = n
	}
	if v, ok := get("WORKERS"); ok {
		n, err := parseInt(v, EnvPrefix+"WORKERS")
		if err != nil {
			return err
		}
		cfg.Workers = n
	}
	if v, ok := get("RETRIES"); ok {
		n, err := parseInt(v, EnvPrefix+"RETRIES")
		if err != nil {
			return err
		}
		cfg.ChunkRetries = n
	}
	if v, ok := get("RESOLUTION"); ok {
		if err := cfg.ParseResolution(v); err != nil {
			return err
		}
	}
	if v, ok := get("FPS"); ok {
		n, err := parseInt(v, EnvPrefix+"FPS")
		if err != nil {
			return err
		}
		cfg.FrameRate = n
	}
	if v, ok := get("CODEC"); ok {
		cfg.VideoCodec = v
	}
	if v, ok := get("PRESET"); ok {
		cfg.Preset = v
	}
	if v, ok := get("CRF"); ok {
		n, err := parseInt(v, EnvPrefix+"CRF")
		if err != nil {
			return err
		}
		cfg.CRF = n
	}
	if v, ok := lookup("NO_COLOR"); ok && v != "" && cfg.ColorMode == ColorAuto {
		cfg.ColorMode = ColorNever
	}
	return nil
}

// parseInt parses a string as an integer; returns a clear error on failure.
func parseInt(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number (got %q)", name, s)
	}
	return n, nil
}

func parseFloat(s, name string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number of seconds (got %q)", name, s)
	}
	return f, nil
}
