package loc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// cacheFormat is bumped whenever the parsed representation changes.
const cacheFormat = "loc/v1"

// Load reads and parses the commit log at source: a file path, a file:// URL
// or an http(s) URL. Relative sources resolve against WithBaseURL when set.
func Load(ctx context.Context, source string, opts ...Option) (Result, error) {
	o := buildOptions(opts)

	ctx, span := o.tracer.Start(ctx, "loc.Load",
		trace.WithAttributes(attribute.String("loc.source", source)))
	defer span.End()

	raw, err := fetch(ctx, source, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		o.logger.ErrorContext(ctx, "load commit log", "source", source, "error", err)

		return Result{}, err
	}

	return o.decode(ctx, span, source, raw, opts)
}

// Fetch returns the raw commit log at source without parsing it.
func Fetch(ctx context.Context, source string, opts ...Option) ([]byte, error) {
	return fetch(ctx, source, buildOptions(opts))
}

// Decode parses raw, previously fetched from source, through the cache.
func Decode(ctx context.Context, source string, raw []byte, opts ...Option) (Result, error) {
	o := buildOptions(opts)

	ctx, span := o.tracer.Start(ctx, "loc.Decode",
		trace.WithAttributes(attribute.String("loc.source", source)))
	defer span.End()

	return o.decode(ctx, span, source, raw, opts)
}

func (o *options) decode(ctx context.Context, span trace.Span, source string, raw []byte, opts []Option) (Result, error) {
	key := cacheKey(raw, o.detectLanguage)

	if o.cache != nil {
		var cached Result

		hit, getErr := o.cache.Get(key, &cached)
		if getErr != nil {
			o.logger.WarnContext(ctx, "parse cache read failed", "error", getErr)
		}

		if hit {
			o.record(ctx, len(cached.Records), cached.Dropped, true)
			span.SetAttributes(attribute.Bool("loc.cache_hit", true))

			return cached, nil
		}
	}

	res, err := Parse(bytes.NewReader(raw), opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		o.logger.ErrorContext(ctx, "parse commit log", "source", source, "error", err)

		return Result{}, fmt.Errorf("parse %s: %w", source, err)
	}

	if o.cache != nil {
		putErr := o.cache.Put(key, res)
		if putErr != nil {
			o.logger.WarnContext(ctx, "parse cache write failed", "error", putErr)
		}
	}

	o.record(ctx, len(res.Records), res.Dropped, false)
	span.SetAttributes(
		attribute.Int("loc.rows", len(res.Records)),
		attribute.Int("loc.dropped", res.Dropped),
	)

	if res.Dropped > 0 {
		o.logger.WarnContext(ctx, "commit log had malformed rows", "source", source, "dropped", res.Dropped)
	}

	return res, nil
}

func (o *options) record(ctx context.Context, rows, dropped int, hit bool) {
	if o.recorder != nil {
		o.recorder.RecordLoad(ctx, rows, dropped, hit)
	}
}

func cacheKey(raw []byte, detect bool) string {
	h := sha256.New()
	h.Write([]byte(cacheFormat))
	h.Write([]byte(strconv.FormatBool(detect)))
	h.Write(raw)

	return hex.EncodeToString(h.Sum(nil))
}

func fetch(ctx context.Context, source string, o *options) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
	}

	if !u.IsAbs() && o.baseURL != nil {
		u = o.baseURL.ResolveReference(u)
	}

	switch u.Scheme {
	case "http", "https":
		return fetchHTTP(ctx, o.client, u.String())
	case "file":
		return readFile(u.Path)
	default:
		return readFile(source)
	}
}

func fetchHTTP(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, target, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrSourceUnavailable, target, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, target, err)
	}

	return body, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	return data, nil
}
