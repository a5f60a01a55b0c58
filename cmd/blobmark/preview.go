package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/blobmark/blobmark/preview"
	"github.com/blobmark/blobmark/render"
	"github.com/blobmark/blobmark/track"
	"github.com/blobmark/blobmark/video"
	"github.com/blobmark/blobmark/vision"
)

func newPreviewCommand(configFlag, logLevelFlag *string) *cobra.Command {
	var inPath string
	var listen string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve a live MJPEG preview with overlays at reduced processing resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, logger, err := loadSettings(*configFlag, *logLevelFlag)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

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

			broadcaster := preview.NewBroadcaster()
			loop := preview.NewLoop(dec, vision.NewDiffExtractor(), tracker,
				render.New(renderOpts), set, broadcaster, width, height, logger)

			server := &http.Server{
				Addr:              listen,
				Handler:           preview.Router(broadcaster),
				ReadHeaderTimeout: 5 * time.Second,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preview at http://%s/stream (Ctrl-C to stop)\n", listen)
			return preview.Serve(ctx, server, loop.Run)
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Source video file")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8990", "Preview server bind address")
	cmd.MarkFlagRequired("in")

	return cmd
}
