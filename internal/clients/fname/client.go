package fname

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

const (
	defaultConcurrency = 4
	defaultAttempts    = 3
)

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger

	// Concurrency caps parallel registry lookups per Resolve call
	Concurrency int
	// Attempts is the number of tries per handle on transient failures
	Attempts uint
	// RetryDelay is the initial backoff; tests set it low
	RetryDelay time.Duration
}

type client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	concurrency int
	attempts    uint
	retryDelay  time.Duration
}

// transferResponse is the subset of GET /transfers/current we read
type transferResponse struct {
	Transfer struct {
		Username string `json:"username"`
		To       uint64 `json:"to"`
	} `json:"transfer"`
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("fname config is required")
	}
	if cfg.BaseURL == "" {
		return nil, apperr.InvalidArgument("fname base URL is required")
	}

	c := &client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  cfg.HTTPClient,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		attempts:    cfg.Attempts,
		retryDelay:  cfg.RetryDelay,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.concurrency <= 0 {
		c.concurrency = defaultConcurrency
	}
	if c.attempts == 0 {
		c.attempts = defaultAttempts
	}
	if c.retryDelay <= 0 {
		c.retryDelay = 250 * time.Millisecond
	}

	return c, nil
}

func (c *client) Resolve(ctx context.Context, handles []string) (map[string]uint64, error) {
	var mu sync.Mutex
	fids := make(map[string]uint64, len(handles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, handle := range handles {
		g.Go(func() error {
			fid, known, err := c.lookup(ctx, handle)
			if err != nil {
				return fmt.Errorf("resolve @%s: %w", handle, err)
			}

			if !known {
				return nil
			}

			mu.Lock()
			fids[handle] = fid
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUnavailable, "fname registry lookup failed")
	}

	return fids, nil
}

// lookup reports known=false when the registry has no such name
func (c *client) lookup(ctx context.Context, handle string) (fid uint64, known bool, err error) {
	unknown := false

	err = retry.Do(
		func() error {
			endpoint := fmt.Sprintf("%s/transfers/current?name=%s", c.baseURL, url.QueryEscape(handle))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			start := time.Now()
			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Warn("fname lookup failed, will retry",
					zap.String("handle", handle),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err))
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					c.logger.Warn("failed to close response body", zap.Error(closeErr))
				}
			}()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				unknown = true
				return nil
			case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("HTTP %d", resp.StatusCode))
			}

			var body transferResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode transfer: %w", err))
			}
			if body.Transfer.To == 0 {
				unknown = true
				return nil
			}

			fid = body.Transfer.To
			c.logger.Debug("resolved fname",
				zap.String("handle", handle),
				zap.Uint64("fid", fid),
				zap.Duration("duration", time.Since(start)))
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying fname lookup", zap.String("handle", handle), zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if err != nil {
		return 0, false, err
	}

	return fid, !unknown, nil
}
