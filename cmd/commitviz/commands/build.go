package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
)

// BuildCommand holds the flags of the build command.
type BuildCommand struct {
	data     string
	outDir   string
	title    string
	theme    string
	assetDir string
	wasm     bool
	overview bool
}

// NewBuildCommand creates the static site build command.
func NewBuildCommand(g *Globals) *cobra.Command {
	bc := &BuildCommand{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the commit view into a static site",
		Long: `Render the commit view into a static site.

Loads the commit log, mounts the scatter plot, panels and story into the page
template and writes index.html and the commit log to the output directory.
With --wasm the page also loads main.wasm to stay interactive in the browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE(g, "build", bc.run),
	}

	cmd.Flags().StringVar(&bc.data, "data", "", "commit log path or URL (default data.source)")
	cmd.Flags().StringVarP(&bc.outDir, "out", "o", "", "output directory (default site.out_dir)")
	cmd.Flags().StringVar(&bc.title, "title", "", "page title")
	cmd.Flags().StringVar(&bc.theme, "theme", "", "color theme: light or dark")
	cmd.Flags().StringVar(&bc.assetDir, "asset-dir", "", "directory holding main.wasm and wasm_exec.js")
	cmd.Flags().BoolVar(&bc.wasm, "wasm", false, "load the WebAssembly host in the page")
	cmd.Flags().BoolVar(&bc.overview, "overview", true, "add the overview charts")

	return cmd
}

func (bc *BuildCommand) run(ctx context.Context, e *env, cmd *cobra.Command) error {
	source := bc.data
	if source == "" {
		source = e.cfg.Data.Source
	}

	outDir := bc.outDir
	if outDir == "" {
		outDir = e.cfg.Site.OutDir
	}

	cfg := e.siteConfig()

	flags := cmd.Flags()
	if flags.Changed("title") {
		cfg.Title = bc.title
	}

	if flags.Changed("theme") {
		theme, ok := parseTheme(bc.theme)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidTheme, bc.theme)
		}

		cfg.Theme = theme
	}

	if flags.Changed("asset-dir") {
		cfg.AssetDir = bc.assetDir
	}

	if flags.Changed("wasm") {
		cfg.WASM = bc.wasm
	}

	if flags.Changed("overview") {
		cfg.Overview = bc.overview
	}

	opts := e.loadOptions()

	raw, err := loc.Fetch(ctx, source, opts...)
	if err != nil {
		return err
	}

	parsed, err := loc.Decode(ctx, source, raw, opts...)
	if err != nil {
		return err
	}

	res, err := e.builder(cfg).Build(ctx, outDir, parsed.Records, raw)
	if err != nil {
		return err
	}

	if e.globals.Quiet {
		return nil
	}

	ok := color.New(color.FgGreen, color.Bold)
	if e.globals.NoColor {
		ok.DisableColor()
	}

	fmt.Fprintf(e.out, "%s %s (%s commits, %s)\n", ok.Sprint("Built"), res.IndexPath,
		humanize.Comma(int64(res.Commits)), humanize.Bytes(uint64(res.Bytes)))

	if parsed.Dropped > 0 {
		fmt.Fprintf(e.out, "Dropped %s malformed rows\n", humanize.Comma(int64(parsed.Dropped)))
	}

	return nil
}
