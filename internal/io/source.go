package io

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/version"
)

// IsURL reports whether path is an http(s) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http:") || strings.HasPrefix(path, "https:")
}

// Expand returns the sources named by path. URLs and paths without glob
// metacharacters are returned as is; patterns expand to their matches in
// lexical order, and a pattern without matches is an argument error.
func Expand(path string) ([]string, error) {
	if IsURL(path) || !strings.ContainsAny(path, "*?[") {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(path)
	if err != nil {
		return nil, errors.NewArgumentError("Read", fmt.Sprintf("invalid pattern %q: %v", path, err))
	}
	if len(matches) == 0 {
		return nil, errors.NewArgumentError("Read", fmt.Sprintf("no files match %q", path))
	}
	slices.Sort(matches)
	return matches, nil
}

// Open opens a local file or fetches a URL. URL requests use the
// configured HTTP timeout.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !IsURL(path) {
		f, err := os.Open(path) //nolint:gosec // reading user-named files is the point
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return f, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetGlobalConfig().HTTPTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("fetching %s: unexpected status %s", path, resp.Status)
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func isEOF(err error) bool {
	return stderrors.Is(err, io.EOF)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// readSources expands path and concatenates what read returns for each
// source.
func readSources(ctx context.Context, path string, read func(io.Reader) (*collection.Collection, error)) (*collection.Collection, error) {
	sources, err := Expand(path)
	if err != nil {
		return nil, err
	}

	parts := make([]*collection.Collection, 0, len(sources))
	for _, src := range sources {
		c, err := readSource(ctx, src, read)
		if err != nil {
			return nil, err
		}
		slog.Debug("read source", "source", src, "records", c.Len())
		parts = append(parts, c)
	}
	return parts[0].Concat(parts[1:]...), nil
}

func readSource(ctx context.Context, src string, read func(io.Reader) (*collection.Collection, error)) (*collection.Collection, error) {
	rc, err := Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	c, err := read(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	return c, nil
}

// writeFile creates path, truncating it, and hands it to write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path) //nolint:gosec // writing user-named files is the point
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
