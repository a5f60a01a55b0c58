package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/blobmark/blobmark/video"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "Show export format candidates and local encoder support",
		RunE: func(cmd *cobra.Command, args []string) error {
			opener := video.NewFFmpegOpener()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Container", "Codec", "Ext", "Supported"})
			for i, cand := range video.DefaultFormats() {
				supported := "no"
				if opener.Supports(cand) {
					supported = "yes"
				}
				t.AppendRow(table.Row{i + 1, cand.Container, cand.Codec, cand.Ext, supported})
			}
			t.Render()
			return nil
		},
	}
}
