package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/photoreel/internal/check"
	"github.com/backmassage/photoreel/internal/config"
	"github.com/backmassage/photoreel/internal/display"
	"github.com/backmassage/photoreel/internal/ffmpeg"
	"github.com/backmassage/photoreel/internal/logging"
	"github.com/backmassage/photoreel/internal/pipeline"
	"github.com/backmassage/photoreel/internal/planner"
	"github.com/backmassage/photoreel/internal/probe"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photoreel <folder_path>",
		Short: "Render a folder of photos into a crossfaded slideshow video",
		Long: `photoreel scans a folder for images, corrects their EXIF orientation,
shuffles them (or keeps natural name order) and renders a letterboxed video
in which every image fades in and out. Images are rendered in chunks that
are joined losslessly at the end; a failed chunk is skipped and reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.BindFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, args, flags)
	}
	cmd.AddCommand(newCheckCmd(flags), newInspectCmd(flags))
	return cmd
}

// runRender is the main render flow. Per-image and per-chunk problems are
// logged inside the pipeline; only a fatal outcome reaches the caller.
func runRender(cmd *cobra.Command, args []string, flags *config.Flags) error {
	// Bootstrap: no logger yet, errors go back to cobra.
	cfg, err := config.Load(cmd, args, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(os.Stdout)

	ctx := cmd.Context()
	if err := check.CheckDeps(ctx, &cfg); err != nil {
		log.Error("%v", err)
		return err
	}

	enc := ffmpeg.NewEncoder(planner.EncodingFromConfig(&cfg), cfg.Verbose)
	runner := pipeline.NewRunner(&cfg, log, enc)
	if cfg.Verify {
		runner.WithProber(probe.FFprobe{})
	}

	rep, runErr := runner.Run(ctx)
	if runErr != nil {
		log.Error("%v", runErr)
	}
	if cfg.ReportPath != "" {
		if err := pipeline.WriteReport(cfg.ReportPath, rep); err != nil {
			log.Warn("Cannot write report %s: %v", cfg.ReportPath, err)
		} else {
			log.Info("Report: %s", cfg.ReportPath)
		}
	}
	return runErr
}

func newCheckCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check ffmpeg, ffprobe and the configured encoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadSettings(cmd, flags)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner(os.Stdout)
			if !check.RunCheck(cmd.Context(), &cfg, log) {
				return fmt.Errorf("system check failed")
			}
			log.Success("Ready to render")
			return nil
		},
	}
}

func newInspectCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <folder_path>",
		Short: "List the images a render would use and how each will be rotated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd, args, flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			return pipeline.Inspect(cmd.Context(), &cfg, log, os.Stdout)
		},
	}
}
