package plex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"curator/internal/classify"
	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/services"
)

const userAgent = "Curator/0.1.0"

// Client triggers Plex library section refreshes after files land in the
// library tree. A nil Client is safe to call and does nothing, so callers
// need no enabled checks at every site.
type Client struct {
	baseURL    string
	token      string
	perPath    bool
	sections   map[classify.Kind]string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a refresh client from configuration. Returns nil when
// the integration is disabled or not fully configured.
func NewClient(cfg *config.Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg == nil || !cfg.Plex.Enabled {
		return nil
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Plex.URL), "/")
	token := strings.TrimSpace(cfg.Plex.Token)
	if baseURL == "" || token == "" {
		return nil
	}

	timeout := time.Duration(cfg.Plex.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL: baseURL,
		token:   token,
		perPath: cfg.Plex.RefreshPerPath,
		sections: map[classify.Kind]string{
			classify.KindMovie:     strings.TrimSpace(cfg.Plex.MoviesSection),
			classify.KindTV:        strings.TrimSpace(cfg.Plex.TVSection),
			classify.KindMovieKids: strings.TrimSpace(cfg.Plex.MoviesKidsSection),
			classify.KindTVKids:    strings.TrimSpace(cfg.Plex.TVKidsSection),
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "plex"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Refresh triggers a scan of the section mapped to kind. When per-path
// refresh is enabled the scan is scoped to libraryPath. Kinds without a
// configured section are skipped silently.
func (c *Client) Refresh(ctx context.Context, kind classify.Kind, libraryPath string) error {
	if c == nil {
		return nil
	}
	section := c.sections[kind]
	if section == "" {
		return nil
	}

	refreshURL := fmt.Sprintf("%s/library/sections/%s/refresh", c.baseURL, url.PathEscape(section))
	if c.perPath && strings.TrimSpace(libraryPath) != "" {
		refreshURL += "?path=" + url.QueryEscape(libraryPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, refreshURL, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "plex", "refresh", "build refresh request", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "plex", "refresh", "trigger section refresh", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransient, "plex", "refresh",
			fmt.Sprintf("plex returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	logging.WithContext(ctx, c.logger).Debug("triggered section refresh",
		logging.String("section", section),
		logging.String("path", libraryPath))
	return nil
}
