package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/pkg/report"
)

type statsFlags struct {
	data     string
	format   string
	progress float64
	topFiles int
}

// NewStatsCommand creates the command that prints the statistics panel.
func NewStatsCommand(g *Globals) *cobra.Command {
	f := &statsFlags{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print commit statistics up to a point in the history",
		Long: `Print the statistics panel, the language breakdown and the largest files for
the commits at or before the cutoff selected by --progress (0..100).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runE(g, "stats", func(ctx context.Context, e *env, cmd *cobra.Command) error {
			err := checkProgress(f.progress)
			if err != nil {
				return err
			}

			format, err := report.ParseFormat(f.format)
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

			topFiles := e.cfg.Site.TopFiles
			if cmd.Flags().Changed("top") {
				topFiles = f.topFiles
			}

			r := report.NewStats(p.Summary(), p.Filtered(), f.progress, p.Cutoff(), topFiles)

			return report.NewWriter(e.globals.NoColor).Write(e.out, r, format)
		}),
	}

	addDataFlags(cmd, &f.data, &f.format, &f.progress)
	cmd.Flags().IntVar(&f.topFiles, "top", 0, "number of files to list, 0 for all (default site.top_files)")

	return cmd
}

func addDataFlags(cmd *cobra.Command, data, format *string, progress *float64) {
	cmd.Flags().StringVar(data, "data", "", "commit log path or URL (default data.source)")
	cmd.Flags().StringVarP(format, "format", "f", "text", "output format: text, json or yaml")
	cmd.Flags().Float64VarP(progress, "progress", "p", 100, "history progress, 0..100")
}
