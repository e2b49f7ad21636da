package config

// This file binds CLI flags onto a cobra command. Flags are grouped into
// timing, ordering, encoding, behavior and display. Values are captured in a
// Flags struct and only the flags the user actually set are copied into the
// Config, so file and environment overrides hold unless a flag wins.

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds raw flag values until [Flags.Apply] merges them into a Config.
type Flags struct {
	ConfigFile string

	output     string
	tempDir    string
	duration   float64
	fade       float64
	chunkSize  int
	firstImage string
	noShuffle  bool
	seed       int64
	workers    int
	retries    int
	resolution string
	fps        int
	codec      string
	preset     string
	crf        int
	noVerify   bool
	report     string
	verbose    bool
	forceColor bool
	noColor    bool
	logFile    string
}

// BindFlags registers the render flags on cmd. They are persistent so the
// check and inspect subcommands see the same encoder and timing settings.
// Defaults shown in help come from DefaultConfig.
func BindFlags(cmd *cobra.Command) *Flags {
	d := DefaultConfig()
	f := &Flags{}
	fs := cmd.PersistentFlags()

	fs.StringVar(&f.ConfigFile, "config", "", "YAML config file (default: ./"+DefaultFileName+" when present)")

	defineTimingFlags(fs, f, &d)
	defineOrderingFlags(fs, f)
	defineEncodingFlags(fs, f, &d)
	defineBehaviorFlags(fs, f, &d)
	BindDisplayFlags(fs, f)
	return f
}

// defineTimingFlags registers --output, --duration, --fade, --chunk-size.
func defineTimingFlags(fs *pflag.FlagSet, f *Flags, d *Config) {
	fs.StringVarP(&f.output, "output", "o", d.Output, "Output video path")
	fs.Float64VarP(&f.duration, "duration", "d", d.DurationPerImage, "Seconds each image is shown")
	fs.Float64Var(&f.fade, "fade", d.FadeDuration, "Crossfade ramp length in seconds (must be < duration; default min(1, duration/3))")
	fs.IntVar(&f.chunkSize, "chunk-size", d.ChunkSize, "Images per rendered segment")
}

// defineOrderingFlags registers --first-image, --no-shuffle, --seed.
func defineOrderingFlags(fs *pflag.FlagSet, f *Flags) {
	fs.StringVar(&f.firstImage, "first-image", "", "File name pinned as the first image")
	fs.BoolVar(&f.noShuffle, "no-shuffle", false, "Keep natural file-name order instead of shuffling")
	fs.Int64Var(&f.seed, "seed", 0, "Shuffle seed (0 = random)")
}

// defineEncodingFlags registers --resolution, --fps, --codec, --preset, --crf.
func defineEncodingFlags(fs *pflag.FlagSet, f *Flags, d *Config) {
	fs.StringVar(&f.resolution, "resolution", d.Resolution(), "Output resolution WxH (letterboxed)")
	fs.IntVar(&f.fps, "fps", d.FrameRate, "Output frame rate")
	fs.StringVar(&f.codec, "codec", d.VideoCodec, "H.264 encoder passed to ffmpeg -c:v")
	fs.StringVar(&f.preset, "preset", d.Preset, "Encoder preset")
	fs.IntVar(&f.crf, "crf", d.CRF, "Constant rate factor (0-51)")
}

// defineBehaviorFlags registers --workers, --retries, --temp-dir, --no-verify, --report.
func defineBehaviorFlags(fs *pflag.FlagSet, f *Flags, d *Config) {
	fs.IntVarP(&f.workers, "workers", "j", d.Workers, "Chunks rendered concurrently")
	fs.IntVar(&f.retries, "retries", d.ChunkRetries, "Extra attempts for a chunk after a transient ffmpeg failure")
	fs.StringVar(&f.tempDir, "temp-dir", "", "Parent directory for the scratch workspace")
	fs.BoolVar(&f.noVerify, "no-verify", false, "Skip ffprobe duration checks")
	fs.StringVar(&f.report, "report", "", "Write a YAML run report to this path")
}

// BindDisplayFlags registers --verbose, --color, --no-color, --log.
func BindDisplayFlags(fs *pflag.FlagSet, f *Flags) {
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output (ffmpeg stderr and debug lines)")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	fs.StringVarP(&f.logFile, "log", "l", "", "Append logs to file")
}

// Apply copies every flag the user set on cmd into cfg and takes the folder
// from the positional args.
func (f *Flags) Apply(cmd *cobra.Command, args []string, cfg *Config) error {
	if err := f.applyChanged(cmd, cfg); err != nil {
		return err
	}
	return parsePositionalArgs(args, cfg)
}

// applyChanged copies every flag the user set on cmd into cfg.
func (f *Flags) applyChanged(cmd *cobra.Command, cfg *Config) error {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("output") {
		cfg.Output = f.output
	}
	if changed("temp-dir") {
		cfg.TempDir = f.tempDir
	}
	if changed("duration") {
		cfg.DurationPerImage = f.duration
	}
	if changed("fade") {
		cfg.FadeDuration = f.fade
		cfg.FadeSet = true
	}
	if changed("chunk-size") {
		cfg.ChunkSize = f.chunkSize
	}
	if changed("first-image") {
		cfg.FirstImage = f.firstImage
	}
	if f.noShuffle {
		cfg.Shuffle = false
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("retries") {
		cfg.ChunkRetries = f.retries
	}
	if changed("resolution") {
		if err := cfg.ParseResolution(f.resolution); err != nil {
			return err
		}
	}
	if changed("fps") {
		cfg.FrameRate = f.fps
	}
	if changed("codec") {
		cfg.VideoCodec = f.codec
	}
	if changed("preset") {
		cfg.Preset = f.preset
	}
	if changed("crf") {
		cfg.CRF = f.crf
	}
	if f.noVerify {
		cfg.Verify = false
	}
	if changed("report") {
		cfg.ReportPath = f.report
	}
	f.ApplyDisplay(cfg)
	return nil
}

// ApplyDisplay copies the display flags into cfg.
func (f *Flags) ApplyDisplay(cfg *Config) {
	if f.verbose {
		cfg.Verbose = true
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Folder from the single positional arg.
func parsePositionalArgs(args []string, cfg *Config) error {
	if len(args) != 1 {
		return ErrNoFolder
	}
	cfg.Folder = NormalizeDirArg(args[0])
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Load resolves the full precedence chain for a render run: defaults, config
// file, dotenv + environment, then flags and the folder argument.
func Load(cmd *cobra.Command, args []string, f *Flags) (Config, error) {
	cfg, err := loadLayers(f)
	if err != nil {
		return cfg, err
	}
	if err := f.Apply(cmd, args, &cfg); err != nil {
		return cfg, fmt.Errorf("flags: %w", err)
	}
	cfg.ResolveFade()
	return cfg, nil
}

// LoadSettings resolves the precedence chain without a folder argument, for
// commands that only need encoder and display settings.
func LoadSettings(cmd *cobra.Command, f *Flags) (Config, error) {
	cfg, err := loadLayers(f)
	if err != nil {
		return cfg, err
	}
	if err := f.applyChanged(cmd, &cfg); err != nil {
		return cfg, fmt.Errorf("flags: %w", err)
	}
	cfg.ResolveFade()
	return cfg, nil
}

// loadLayers applies the config file and the environment over the defaults.
func loadLayers(f *Flags) (Config, error) {
	cfg := DefaultConfig()

	path, optional := f.ConfigFile, false
	if path == "" {
		path, optional = DefaultFileName, true
	}
	if err := LoadFile(&cfg, path, optional); err != nil {
		return cfg, err
	}
	if err := LoadEnv(); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return cfg, err
	}
	return cfg, nil
}
