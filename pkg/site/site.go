// Package site builds the static commit view: it renders the page template,
// mounts the commit view into it on the build machine and writes the result
// next to the commit log.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/commitviz/pkg/dom/htmldoc"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/page"
)

// Output names.
const (
	IndexFile       = "index.html"
	DefaultDataFile = "loc.csv"
	WASMFile        = "main.wasm"
	WASMExecFile    = "wasm_exec.js"
	overviewID      = "overview"
	dirPerm         = 0o755
	filePerm        = 0o644
)

// ErrNoOutputDir is returned when Build has nowhere to write.
var ErrNoOutputDir = errors.New("output directory is required")

// Config controls the static build.
type Config struct {
	Title       string
	Description string
	Theme       Theme
	// DataFile is the name the commit log is written under, relative to the
	// output directory.
	DataFile string
	// TopFiles bounds the largest-files chart.
	TopFiles int
	// Overview adds the echarts overview sections below the commit view.
	Overview bool
	// WASM adds the script tags that hydrate the page in the browser.
	WASM bool
	// AssetDir, when set, holds main.wasm and wasm_exec.js to copy into the
	// output.
	AssetDir string
}

// DefaultConfig returns the standard page settings.
func DefaultConfig() Config {
	return Config{
		Title:       "Meta",
		Description: "Stats about the code of this site.",
		Theme:       ThemeLight,
		DataFile:    DefaultDataFile,
		TopFiles:    DefaultTopFiles,
		Overview:    true,
	}
}

// Result describes a finished build.
type Result struct {
	IndexPath string
	DataPath  string
	Assets    []string
	Commits   int
	Bytes     int
}

// Builder renders commit views into the page template.
type Builder struct {
	cfg      Config
	logger   *slog.Logger
	tracer   trace.Tracer
	pageOpts []page.Option
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithTracer sets the tracer used for the build span.
func WithTracer(t trace.Tracer) Option {
	return func(b *Builder) {
		if t != nil {
			b.tracer = t
		}
	}
}

// WithPageOptions passes options to the mounted page.
func WithPageOptions(opts ...page.Option) Option {
	return func(b *Builder) { b.pageOpts = append(b.pageOpts, opts...) }
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: nooptrace.NewTracerProvider().Tracer("site"),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.cfg.DataFile == "" {
		b.cfg.DataFile = DefaultDataFile
	}

	if b.cfg.TopFiles <= 0 {
		b.cfg.TopFiles = DefaultTopFiles
	}

	return b
}

// Render mounts the commit view for records into the page template and
// writes the finished document to w.
func (b *Builder) Render(w io.Writer, records []loc.LineRecord) (*page.Page, error) {
	shell, err := b.shell()
	if err != nil {
		return nil, err
	}

	doc, err := htmldoc.Parse(bytes.NewReader(shell))
	if err != nil {
		return nil, err
	}

	pageOpts := append([]page.Option{page.WithLogger(b.logger)}, b.pageOpts...)

	p, err := page.New(doc, records, pageOpts...)
	if err != nil {
		return nil, fmt.Errorf("prepare page: %w", err)
	}

	p.Mount()

	if b.cfg.Overview {
		err = b.appendOverview(doc, p)
		if err != nil {
			return nil, err
		}
	}

	err = doc.Render(w)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Build renders the page for records into outDir as index.html and writes
// data, the raw commit log, next to it.
func (b *Builder) Build(ctx context.Context, outDir string, records []loc.LineRecord, data []byte) (Result, error) {
	ctx, span := b.tracer.Start(ctx, "site.Build",
		trace.WithAttributes(attribute.String("site.out_dir", outDir)))
	defer span.End()

	res, err := b.build(outDir, records, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		b.logger.ErrorContext(ctx, "site build failed", "out", outDir, "error", err)

		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("site.commits", res.Commits),
		attribute.Int("site.bytes", res.Bytes),
	)
	b.logger.InfoContext(ctx, "site built", "index", res.IndexPath, "commits", res.Commits, "bytes", res.Bytes)

	return res, nil
}

func (b *Builder) build(outDir string, records []loc.LineRecord, data []byte) (Result, error) {
	if outDir == "" {
		return Result{}, ErrNoOutputDir
	}

	err := os.MkdirAll(outDir, dirPerm)
	if err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer

	p, err := b.Render(&buf, records)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		IndexPath: filepath.Join(outDir, IndexFile),
		Commits:   len(p.Commits()),
		Bytes:     buf.Len(),
	}

	err = os.WriteFile(res.IndexPath, buf.Bytes(), filePerm)
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", IndexFile, err)
	}

	if data != nil {
		res.DataPath = filepath.Join(outDir, b.cfg.DataFile)

		err = os.WriteFile(res.DataPath, data, filePerm)
		if err != nil {
			return Result{}, fmt.Errorf("write %s: %w", b.cfg.DataFile, err)
		}
	}

	if b.cfg.AssetDir != "" {
		res.Assets, err = copyAssets(b.cfg.AssetDir, outDir)
		if err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

func (b *Builder) shell() ([]byte, error) {
	darkClass := ""
	if b.cfg.Theme == ThemeDark {
		darkClass = "dark"
	}

	return renderTemplate("page.html", pageData{
		Title:       b.cfg.Title,
		Description: b.cfg.Description,
		DarkClass:   darkClass,
		Theme:       GetThemeConfig(b.cfg.Theme),
		DataFile:    b.cfg.DataFile,
		WASM:        b.cfg.WASM,
	})
}

func (b *Builder) appendOverview(doc *htmldoc.Document, p *page.Page) error {
	box := doc.ElementByID(overviewID)
	if box == nil {
		return nil
	}

	sections := Overview(p.Commits(), p.Palette(), NewChartOpts(b.cfg.Theme), b.cfg.TopFiles)

	for _, s := range sections {
		var chart bytes.Buffer

		err := WrapChart(s.Chart).Render(&chart)
		if err != nil {
			return fmt.Errorf("render section %s: %w", s.ID, err)
		}

		fragment, err := renderTemplate("section.html", sectionData{
			ID:       s.ID,
			Title:    s.Title,
			Subtitle: s.Subtitle,
			Chart:    template.HTML(chart.String()),
		})
		if err != nil {
			return err
		}

		err = htmldoc.AppendHTML(box, string(fragment))
		if err != nil {
			return fmt.Errorf("insert section %s: %w", s.ID, err)
		}
	}

	return nil
}

func copyAssets(src, dst string) ([]string, error) {
	var copied []string

	for _, name := range []string{WASMFile, WASMExecFile} {
		data, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", name, err)
		}

		target := filepath.Join(dst, name)

		err = os.WriteFile(target, data, filePerm)
		if err != nil {
			return nil, fmt.Errorf("write asset %s: %w", name, err)
		}

		copied = append(copied, target)
	}

	return copied, nil
}
