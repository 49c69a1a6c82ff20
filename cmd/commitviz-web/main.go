//go:build js && wasm

// Package main is the browser host: it loads the commit log next to the page,
// mounts the commit view on the live DOM and feeds it pointer, slider and
// scroll events.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"syscall/js"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/config"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom/jsdoc"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/observability"
	"github.com/Sumatoshi-tech/commitviz/pkg/page"
	"github.com/Sumatoshi-tech/commitviz/pkg/version"
)

const loadTimeout = 30 * time.Second

type hostFlags struct {
	data      string
	location  string
	urlPrefix string
	logLevel  string
}

func main() {
	f := &hostFlags{}

	rootCmd := &cobra.Command{
		Use:           "commitviz-web",
		Short:         "Browser host for the commit view",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	rootCmd.Flags().StringVar(&f.data, "data", config.DefaultDataSource, "commit log URL, relative to the page")
	rootCmd.Flags().StringVar(&f.location, "location", "", "IANA zone for times; empty keeps each commit's offset")
	rootCmd.Flags().StringVar(&f.urlPrefix, "url-prefix", "", "commit link prefix")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "console log level")

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *hostFlags) error {
	level, err := config.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(consoleWriter{}, level, false, "commitviz", "", observability.ModeWeb)
	logger.Info("starting browser host", "version", version.Version, "data", f.data)

	base, err := url.Parse(js.Global().Get("location").Get("href").String())
	if err != nil {
		return fmt.Errorf("page location: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	res, err := loc.Load(loadCtx, f.data, loc.WithBaseURL(base), loc.WithLogger(logger))
	if err != nil {
		// The pre-rendered page stays in place; only interactivity is lost.
		return err
	}

	opts := []page.Option{page.WithLogger(logger)}

	if f.urlPrefix != "" {
		opts = append(opts, page.WithCommitOptions(commits.WithURLPrefix(f.urlPrefix)))
	}

	if f.location != "" {
		zone, zoneErr := time.LoadLocation(f.location)
		if zoneErr != nil {
			return fmt.Errorf("%w: %q", config.ErrInvalidLocation, f.location)
		}

		opts = append(opts, page.WithLocation(zone))
	}

	doc := jsdoc.New()

	p, err := page.New(doc, res.Records, opts...)
	if err != nil {
		return err
	}

	p.Mount()

	h := newHost(doc, p, logger)
	h.bind()

	logger.Info("commit view interactive", "commits", len(p.Commits()))

	// Callbacks run on this goroutine's behalf; main must not return.
	select {}
}

// consoleWriter sends log lines to the browser console.
type consoleWriter struct{}

func (consoleWriter) Write(b []byte) (int, error) {
	js.Global().Get("console").Call("log", string(b))

	return len(b), nil
}
