package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/photos/trip", "/photos/trip"},
		{"single trailing slash", "/photos/trip/", "/photos/trip"},
		{"multiple trailing slashes", "/photos/trip///", "/photos/trip"},
		{"root path", "/", "/"},
		{"relative path", "photos", "photos"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func validCfg() Config {
	cfg := DefaultConfig()
	cfg.Folder = "/photos"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validCfg()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidate_FadeVsDuration(t *testing.T) {
	tests := []struct {
		name     string
		fade     float64
		duration float64
		wantErr  bool
	}{
		{"fade shorter", 1, 3, false},
		{"no fade", 0, 1, false},
		{"fade equal", 3, 3, true},
		{"fade longer", 2, 1, true},
		{"negative fade", -1, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCfg()
			cfg.FadeDuration = tt.fade
			cfg.DurationPerImage = tt.duration
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FadeTooLongSentinel(t *testing.T) {
	cfg := validCfg()
	cfg.FadeDuration = 2
	cfg.DurationPerImage = 1
	if err := cfg.Validate(); !errors.Is(err, ErrFadeTooLong) {
		t.Errorf("Validate() = %v, want ErrFadeTooLong", err)
	}
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing folder", func(c *Config) { c.Folder = "" }},
		{"empty output", func(c *Config) { c.Output = "" }},
		{"zero duration", func(c *Config) { c.DurationPerImage = 0 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative retries", func(c *Config) { c.ChunkRetries = -1 }},
		{"zero fps", func(c *Config) { c.FrameRate = 0 }},
		{"odd width", func(c *Config) { c.Width = 1921 }},
		{"crf out of range", func(c *Config) { c.CRF = 60 }},
		{"bad color", func(c *Config) { c.ColorMode = "sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCfg()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestParseResolution(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ParseResolution("1280X720"); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("got %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	for _, bad := range []string{"1280", "axb", "1280x", ""} {
		if err := cfg.ParseResolution(bad); !errors.Is(err, ErrBadResolution) {
			t.Errorf("ParseResolution(%q) = %v, want ErrBadResolution", bad, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photoreel.yaml")
	body := "duration: 5\nfade: 0.5\nchunk_size: 4\nshuffle: false\nresolution: 1280x720\nworkers: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path, false); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DurationPerImage != 5 || cfg.FadeDuration != 0.5 || cfg.ChunkSize != 4 || !cfg.FadeSet {
		t.Errorf("timing not applied: %+v", cfg)
	}
	if cfg.Shuffle {
		t.Error("shuffle: false should override default")
	}
	if cfg.Width != 1280 || cfg.Height != 720 || cfg.Workers != 3 {
		t.Errorf("encoding/scheduling not applied: %+v", cfg)
	}
	if cfg.Output != "output.mp4" {
		t.Errorf("unset field changed: output = %q", cfg.Output)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := DefaultConfig()
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if err := LoadFile(&cfg, missing, true); err != nil {
		t.Errorf("optional missing file: %v", err)
	}
	if err := LoadFile(&cfg, missing, false); err == nil {
		t.Error("required missing file should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PHOTOREEL_DURATION":   "4",
		"PHOTOREEL_CHUNK_SIZE": "7",
		"PHOTOREEL_SHUFFLE":    "false",
		"PHOTOREEL_OUTPUT":     "/tmp/out.mp4",
		"NO_COLOR":             "1",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.DurationPerImage != 4 || cfg.ChunkSize != 7 || cfg.Shuffle || cfg.Output != "/tmp/out.mp4" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.FadeSet {
		t.Error("fade marked as set without PHOTOREEL_FADE")
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("NO_COLOR: color mode = %q, want never", cfg.ColorMode)
	}

	env["PHOTOREEL_WORKERS"] = "many"
	if err := ApplyEnv(&cfg, lookup); err == nil {
		t.Error("non-numeric PHOTOREEL_WORKERS should fail")
	}
}

func TestFlagsApply_OnlyChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "photoreel"}
	f := BindFlags(cmd)
	if err := cmd.ParseFlags([]string{"--duration", "2", "--no-shuffle", "--first-image", "a.jpg"}); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ChunkSize = 4 // pretend a config file set this
	if err := f.Apply(cmd, []string{"/photos/"}, &cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.DurationPerImage != 2 {
		t.Errorf("duration = %g, want 2", cfg.DurationPerImage)
	}
	if cfg.ChunkSize != 4 {
		t.Errorf("unset --chunk-size overrode file value: %d", cfg.ChunkSize)
	}
	if cfg.Shuffle || cfg.FirstImage != "a.jpg" || cfg.Folder != "/photos" {
		t.Errorf("ordering flags not applied: %+v", cfg)
	}
}

func TestFlagsApply_NeedsFolder(t *testing.T) {
	cmd := &cobra.Command{Use: "photoreel"}
	f := BindFlags(cmd)
	cfg := DefaultConfig()
	if err := f.Apply(cmd, nil, &cfg); !errors.Is(err, ErrNoFolder) {
		t.Errorf("Apply(no args) = %v, want ErrNoFolder", err)
	}
}

func TestLoadSettings_SubcommandInheritsFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	root := &cobra.Command{Use: "photoreel"}
	f := BindFlags(root)
	sub := &cobra.Command{Use: "check"}
	root.AddCommand(sub)
	if err := sub.ParseFlags([]string{"--crf", "18", "--codec", "libx265"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSettings(sub, f)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if cfg.CRF != 18 || cfg.VideoCodec != "libx265" {
		t.Errorf("inherited flags not applied: crf=%d codec=%s", cfg.CRF, cfg.VideoCodec)
	}
	if cfg.Folder != "" {
		t.Errorf("folder = %q, want empty", cfg.Folder)
	}
}

func TestResolveFade(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		fade     float64
		set      bool
		want     float64
	}{
		{"default duration", 3, 1, false, 1},
		{"long duration caps at one second", 6, 1, false, 1},
		{"short duration", 1.5, 1, false, 0.5},
		{"explicit fade kept", 1, 1, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DurationPerImage = tt.duration
			cfg.FadeDuration = tt.fade
			cfg.FadeSet = tt.set
			cfg.ResolveFade()
			if cfg.FadeDuration != tt.want {
				t.Errorf("fade = %g, want %g", cfg.FadeDuration, tt.want)
			}
		})
	}
}

func TestLoad_DurationAloneDerivesFade(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		wantErr error
	}{
		{"duration 1", []string{"--duration", "1"}, nil},
		{"duration 0.5", []string{"--duration", "0.5"}, nil},
		{"explicit fade too long", []string{"--duration", "1", "--fade", "1"}, ErrFadeTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cmd := &cobra.Command{Use: "photoreel"}
			f := BindFlags(cmd)
			if err := cmd.ParseFlags(tt.flags); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(cmd, []string{"/photos"}, f)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			err = cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v (fade %g, duration %g)", err, cfg.FadeDuration, cfg.DurationPerImage)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NeedsFolder(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := &cobra.Command{Use: "photoreel"}
	f := BindFlags(cmd)
	if _, err := Load(cmd, nil, f); !errors.Is(err, ErrNoFolder) {
		t.Errorf("Load(no args) = %v, want ErrNoFolder", err)
	}
}
