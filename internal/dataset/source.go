// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/donor-match/internal/httputil"
	"github.com/pdiddy/donor-match/internal/logging"
	"github.com/pdiddy/donor-match/pkg/types"
)

const maxDatasetBytes = 256 << 20

// DirSource loads datasets from <Dir>/<version>.yaml.
type DirSource struct {
	Dir string
}

// Name identifies the source in logs.
func (s DirSource) Name() string { return "dir:" + s.Dir }

// Load reads and validates the dataset for version.
func (s DirSource) Load(ctx context.Context, version string) (*types.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Dir, FileName(version))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrUnknownVersion)
		}
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f, version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// HTTPSource loads datasets from <BaseURL>/<version>.yaml, retrying rate
// limits and gateway errors.
type HTTPSource struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Retry     httputil.RetryPolicy
}

// NewHTTPSource builds an HTTPSource from configuration.
func NewHTTPSource(cfg types.DatasetConfig, log zerolog.Logger) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSource{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: timeout},
		Retry: httputil.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			Logger:     logging.Component(log, "dataset"),
		},
	}
}

// Name identifies the source in logs.
func (s *HTTPSource) Name() string { return "http:" + s.BaseURL }

// Load downloads and validates the dataset for version.
func (s *HTTPSource) Load(ctx context.Context, version string) (*types.Dataset, error) {
	u, err := url.JoinPath(s.BaseURL, url.PathEscape(FileName(version)))
	if err != nil {
		return nil, fmt.Errorf("building dataset URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, */*")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := s.Retry.Do(ctx, client, req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", u, ErrUnknownVersion)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: HTTP %d", u, resp.StatusCode)
	}

	ds, err := Decode(io.LimitReader(resp.Body, maxDatasetBytes), version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	return ds, nil
}

// NewSource returns the HTTP source when a base URL is configured and the
// directory source otherwise.
func NewSource(cfg types.DatasetConfig, log zerolog.Logger) Source {
	if cfg.BaseURL != "" {
		return NewHTTPSource(cfg, log)
	}
	return DirSource{Dir: cfg.Dir}
}

// Source is implemented by DirSource and *HTTPSource.
type Source interface {
	Name() string
	Load(ctx context.Context, version string) (*types.Dataset, error)
}
