package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/blobmark/blobmark/export"
	"github.com/blobmark/blobmark/render"
	"github.com/blobmark/blobmark/track"
	"github.com/blobmark/blobmark/video"
	"github.com/blobmark/blobmark/vision"
)

func newExportCommand(configFlag, logLevelFlag *string) *cobra.Command {
	var inPath string
	var outPath string
	var fps int
	var overlaysOnly bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the full source with overlays into an encoded file",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, logger, err := loadSettings(*configFlag, *logLevelFlag)
			if err != nil {
				return err
			}
			if fps > 0 {
				set.Output.FrameRate = fps
			}
			if overlaysOnly {
				set.Overlay.OverlaysOnly = true
			}

			ctx := cmd.Context()
			dec, err := video.NewFFmpegDecoder(ctx, inPath)
			if err != nil {
				return err
			}
			defer dec.Close()
			width, height := dec.Size()

			renderOpts, err := set.RenderOptions()
			if err != nil {
				return err
			}
			tracker := track.NewTracker(track.Config{
				Radius:        set.Tracking.Radius,
				Timeout:       track.DefaultTimeout,
				HistoryLength: set.Tracking.HistoryLength,
				MinArea:       set.Detection.MinArea,
				FilterDT:      1.0 / float64(set.Output.FrameRate),
			})

			var bar *progressbar.ProgressBar
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetDescription("Exporting"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
				)
			}

			driver := export.New(dec, video.NewFFmpegOpener(), vision.NewDiffExtractor(),
				tracker, render.New(renderOpts), set.Detection,
				export.Options{
					Width:        width,
					Height:       height,
					FrameRate:    set.Output.FrameRate,
					OverlaysOnly: set.Overlay.OverlaysOnly,
					Progress: func(pct int) {
						if bar != nil {
							bar.Set(pct)
						}
					},
				}, logger)

			artifact, err := driver.Run(ctx)
			if bar != nil {
				fmt.Fprintln(os.Stderr)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(cmd.OutOrStdout(), "Export cancelled; no output written.")
					return nil
				}
				return err
			}

			dest := outPath
			if dest == "" {
				base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
				dest = base + "_overlay." + artifact.FormatID
			}
			if err := os.WriteFile(dest, artifact.Bytes, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", dest)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d bytes)\n",
				dest, artifact.FormatID, len(artifact.Bytes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Source video file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: <in>_overlay.<ext>)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Target output frame rate (overrides settings)")
	cmd.Flags().BoolVar(&overlaysOnly, "overlays-only", false, "Render markers on a blank canvas")
	cmd.MarkFlagRequired("in")

	return cmd
}
