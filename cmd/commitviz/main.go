// Package main provides the entry point for the commitviz CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/cmd/commitviz/commands"
	"github.com/Sumatoshi-tech/commitviz/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "commitviz",
		Short: "Commitviz - commit history of a site, by time of day",
		Long: `Commitviz turns a per-line commit log into a scatter plot of commits by date
and hour, with selection, statistics and a scroll story.

Commands:
  build     Render the static site
  stats     Print statistics up to a point in the history
  select    List the commits inside a plot region
  story     Print the commit story
  snapshot  Export the plot as PNG or SVG`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&g.Quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(commands.NewBuildCommand(g))
	rootCmd.AddCommand(commands.NewStatsCommand(g))
	rootCmd.AddCommand(commands.NewSelectCommand(g))
	rootCmd.AddCommand(commands.NewStoryCommand(g))
	rootCmd.AddCommand(commands.NewSnapshotCommand(g))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("commitviz"))
		},
	}
}
