package retrieval

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"searchbot/config"
	"searchbot/types"

	"github.com/rs/zerolog"
)

// FetcherConfig configures source requests. Zero values fall back to the config defaults.
type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
	Logger    *zerolog.Logger
}

// Fetcher issues one GET per source and never returns an error to its caller;
// failures come back as an empty, not-succeeded FetchResult.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       zerolog.Logger
}

// NewFetcher creates a Fetcher from cfg
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.FetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultUserAgent
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "fetcher").Logger()
	}
	return &Fetcher{
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		log:       log,
	}
}

// BuildURL substitutes the escaped query into the source's URL template
func BuildURL(src types.Source, query string) string {
	return strings.ReplaceAll(src.URLTemplate, types.QueryPlaceholder, url.QueryEscape(query))
}

// Fetch retrieves the markup for one source. Non-2xx bodies are still returned
// since result pages are parsed as-is; only transport failures yield an empty result.
func (f *Fetcher) Fetch(ctx context.Context, index int, src types.Source, query string) types.FetchResult {
	target := BuildURL(src, query)
	result := types.FetchResult{SourceIndex: index, URL: target}

	body, status, err := f.get(ctx, target)
	if err != nil {
		f.log.Warn().Err(err).Str("source", src.Name).Str("url", target).Msg("Error fetching source")
		return result
	}
	if status < 200 || status >= 300 {
		f.log.Debug().Str("source", src.Name).Int("status", status).Msg("Source returned non-2xx status")
	}

	result.Markup = body
	result.StatusCode = status
	result.Succeeded = true
	return result
}

func (f *Fetcher) get(ctx context.Context, target string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxBodyBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), resp.StatusCode, nil
}
