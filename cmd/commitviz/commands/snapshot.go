package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/pkg/snapshot"
)

const snapshotPerm = 0o644

type snapshotFlags struct {
	data     string
	format   string
	output   string
	title    string
	progress float64
}

// NewSnapshotCommand creates the command that exports the plot as an image.
func NewSnapshotCommand(g *Globals) *cobra.Command {
	f := &snapshotFlags{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the scatter plot as a PNG or SVG image",
		Long: `Export the scatter plot of the commits at or before --progress as a static
PNG or SVG image. Without --output the image is written to stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runE(g, "snapshot", func(ctx context.Context, e *env, cmd *cobra.Command) error {
			err := checkProgress(f.progress)
			if err != nil {
				return err
			}

			format, err := snapshot.ParseFormat(f.format)
			if err != nil {
				return err
			}

			records, err := e.load(ctx, f.data)
			if err != nil {
				return err
			}

			p, err := e.mount(records, f.progress)
			if err != nil {
				return err
			}

			opts := snapshot.DefaultOptions()
			opts.Format = format
			opts.Scatter = e.scatterConfig()

			if cmd.Flags().Changed("title") {
				opts.Title = f.title
			}

			_, span := e.providers.Tracer.Start(ctx, "snapshot.Render")
			defer span.End()

			if f.output == "" {
				return snapshot.Render(e.out, p.Filtered(), opts)
			}

			out, err := os.OpenFile(f.output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, snapshotPerm)
			if err != nil {
				return fmt.Errorf("create snapshot: %w", err)
			}

			err = snapshot.Render(out, p.Filtered(), opts)
			if err != nil {
				out.Close()

				return err
			}

			err = out.Close()
			if err != nil {
				return fmt.Errorf("close snapshot: %w", err)
			}

			e.logger.InfoContext(ctx, "snapshot written", "path", f.output, "commits", len(p.Filtered()))

			return nil
		}),
	}

	cmd.Flags().StringVar(&f.data, "data", "", "commit log path or URL (default data.source)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "png", "image format: png or svg")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&f.title, "title", "", "chart title")
	cmd.Flags().Float64VarP(&f.progress, "progress", "p", 100, "history progress, 0..100")

	return cmd
}
