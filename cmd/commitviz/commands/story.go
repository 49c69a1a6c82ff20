package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/pkg/events"
	"github.com/Sumatoshi-tech/commitviz/pkg/report"
)

type storyFlags struct {
	data   string
	format string
	step   int
}

// NewStoryCommand creates the command that prints the scroll story.
func NewStoryCommand(g *Globals) *cobra.Command {
	f := &storyFlags{}

	cmd := &cobra.Command{
		Use:   "story",
		Short: "Print the commit story",
		Long: `Print one narrative step per commit, oldest first.

With --step N the story is scrolled to step N (counting from 0) and the
statistics at that step's commit are printed instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runE(g, "story", func(ctx context.Context, e *env, cmd *cobra.Command) error {
			format, err := report.ParseFormat(f.format)
			if err != nil {
				return err
			}

			records, err := e.load(ctx, f.data)
			if err != nil {
				return err
			}

			p, err := e.mount(records, 100)
			if err != nil {
				return err
			}

			w := report.NewWriter(e.globals.NoColor)

			if !cmd.Flags().Changed("step") {
				return w.Write(e.out, report.NewStory(p.Steps()), format)
			}

			err = p.Dispatch(events.Event{Name: events.StepEnter, Step: f.step})
			if err != nil {
				return err
			}

			r := report.NewStats(p.Summary(), p.Filtered(), p.Timeline().Progress(p.Cutoff()), p.Cutoff(), e.cfg.Site.TopFiles)

			return w.Write(e.out, r, format)
		}),
	}

	cmd.Flags().StringVar(&f.data, "data", "", "commit log path or URL (default data.source)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format: text, json or yaml")
	cmd.Flags().IntVar(&f.step, "step", 0, "scroll to this step")

	return cmd
}
