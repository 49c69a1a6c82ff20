// Package commands implements the commitviz CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/commitviz/pkg/cache"
	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/config"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/observability"
	"github.com/Sumatoshi-tech/commitviz/pkg/page"
	"github.com/Sumatoshi-tech/commitviz/pkg/scatter"
	"github.com/Sumatoshi-tech/commitviz/pkg/site"
	"github.com/Sumatoshi-tech/commitviz/pkg/version"
)

// Flag errors.
var (
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrInvalidTheme    = errors.New("theme must be light or dark")
)

// Globals are the root command's persistent flags.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

// env is what a command body runs against: configuration, telemetry and
// the options every core package takes.
type env struct {
	globals   *Globals
	cfg       *config.Config
	location  *time.Location
	providers observability.Providers
	loads     *observability.LoadMetrics
	commands  *observability.CommandMetrics
	logger    *slog.Logger
	out       io.Writer
}

func newEnv(g *Globals, out, errOut io.Writer) (*env, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(cfg, observability.Options{
		Mode:    observability.ModeCLI,
		Version: version.Version,
		Verbose: g.Verbose,
		Quiet:   g.Quiet,
		Output:  errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	loads, err := observability.NewLoadMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	cmds, err := observability.NewCommandMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &env{
		globals:   g,
		cfg:       cfg,
		location:  location,
		providers: providers,
		loads:     loads,
		commands:  cmds,
		logger:    providers.Logger,
		out:       out,
	}, nil
}

func (e *env) close() {
	err := e.providers.Shutdown(context.Background())
	if err != nil {
		e.logger.Warn("observability shutdown failed", "error", err)
	}
}

// runE wraps body with config loading, a command span and command metrics.
func runE(g *Globals, name string, body func(ctx context.Context, e *env, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := newEnv(g, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.close()

		ctx, span := e.providers.Tracer.Start(cmd.Context(), "command."+name)
		start := time.Now()

		err = body(ctx, e, cmd)

		e.commands.RecordCommand(ctx, name, time.Since(start), err)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, name+" failed")
		}

		span.End()

		return err
	}
}

func (e *env) loadOptions() []loc.Option {
	opts := []loc.Option{
		loc.WithLogger(e.logger),
		loc.WithTracer(e.providers.Tracer),
		loc.WithRecorder(e.loads),
		loc.WithLanguageDetection(e.cfg.Data.DetectLanguage),
		loc.WithHTTPClient(&http.Client{Timeout: e.cfg.Data.HTTPTimeout}),
	}

	if e.cfg.Data.CacheEnabled {
		store, err := cache.New(e.cfg.Data.CacheDir)
		if err != nil {
			e.logger.Warn("parse cache disabled", "dir", e.cfg.Data.CacheDir, "error", err)
		} else {
			opts = append(opts, loc.WithCache(store))
		}
	}

	return opts
}

func (e *env) load(ctx context.Context, source string) ([]loc.LineRecord, error) {
	if source == "" {
		source = e.cfg.Data.Source
	}

	res, err := loc.Load(ctx, source, e.loadOptions()...)
	if err != nil {
		return nil, err
	}

	return res.Records, nil
}

func (e *env) scatterConfig() scatter.Config {
	sc := scatter.DefaultConfig()
	sc.Width = e.cfg.Chart.Width
	sc.Height = e.cfg.Chart.Height
	sc.MinRadius = e.cfg.Chart.MinRadius
	sc.MaxRadius = e.cfg.Chart.MaxRadius

	if e.location != nil {
		sc.Location = e.location
	}

	return sc
}

func (e *env) commitOptions() []commits.Option {
	var opts []commits.Option

	if e.cfg.Data.URLPrefix != "" {
		opts = append(opts, commits.WithURLPrefix(e.cfg.Data.URLPrefix))
	}

	if e.cfg.Data.Strict {
		opts = append(opts, commits.WithStrictMetadata())
	}

	return opts
}

func (e *env) pageOptions() []page.Option {
	opts := []page.Option{
		page.WithLogger(e.logger),
		page.WithScatterConfig(e.scatterConfig()),
		page.WithCommitOptions(e.commitOptions()...),
	}

	if e.location != nil {
		opts = append(opts, page.WithLocation(e.location))
	}

	return opts
}

func (e *env) siteConfig() site.Config {
	theme, _ := parseTheme(e.cfg.Site.Theme)

	return site.Config{
		Title:       e.cfg.Site.Title,
		Description: e.cfg.Site.Description,
		Theme:       theme,
		DataFile:    e.cfg.Site.DataFile,
		TopFiles:    e.cfg.Site.TopFiles,
		Overview:    e.cfg.Site.Overview,
		WASM:        e.cfg.Site.WASM,
		AssetDir:    e.cfg.Site.AssetDir,
	}
}

func (e *env) builder(cfg site.Config) *site.Builder {
	return site.NewBuilder(cfg,
		site.WithLogger(e.logger),
		site.WithTracer(e.providers.Tracer),
		site.WithPageOptions(e.pageOptions()...),
	)
}

// mount renders a throwaway page for records and returns the live view the
// inspection commands query.
func (e *env) mount(records []loc.LineRecord, progress float64) (*page.Page, error) {
	cfg := e.siteConfig()
	cfg.Overview = false

	p, err := e.builder(cfg).Render(io.Discard, records)
	if err != nil {
		return nil, err
	}

	err = p.SetProgress(progress)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func parseTheme(s string) (site.Theme, bool) {
	return site.ParseTheme(strings.ToLower(strings.TrimSpace(s)))
}

func checkProgress(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %v", ErrInvalidProgress, v)
	}

	return nil
}
