package hub

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger

	// Attempts is the number of tries on transient failures
	Attempts   uint
	RetryDelay time.Duration

	// Breaker trips after BreakerMinRequests with a failure ratio >= BreakerFailureRatio
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerTimeout      time.Duration

	// Now stamps casts; defaults to time.Now
	Now func() time.Time
}

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	attempts   uint
	retryDelay time.Duration
	breaker    *gobreaker.CircuitBreaker
	now        func() time.Time
}

// messageData is the signed part of a submission
type messageData struct {
	FID       uint64             `json:"fid"`
	Timestamp int64              `json:"timestamp"`
	Cast      *entities.CastBody `json:"cast"`
}

type submitRequest struct {
	Data      json.RawMessage `json:"data"`
	Signer    string          `json:"signer"`
	Signature string          `json:"signature"`
}

type errorResponse struct {
	ErrCode string `json:"errCode"`
	Details string `json:"details"`
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("hub config is required")
	}
	if cfg.BaseURL == "" {
		return nil, apperr.InvalidArgument("hub base URL is required")
	}

	c := &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		now:        cfg.Now,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.attempts == 0 {
		c.attempts = 3
	}
	if c.retryDelay <= 0 {
		c.retryDelay = 500 * time.Millisecond
	}
	if c.now == nil {
		c.now = time.Now
	}

	minRequests := cfg.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	failureRatio := cfg.BreakerFailureRatio
	if failureRatio == 0 {
		failureRatio = 0.8
	}
	timeout := cfg.BreakerTimeout
	if timeout == 0 {
		timeout = time.Minute
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "hub",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
		// A 4xx means the hub is healthy and the cast is bad
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			de, ok := IsDeliveryError(err)
			return ok && !de.Temporary()
		},
	})

	return c, nil
}

func (c *client) SubmitCast(ctx context.Context, body *entities.CastBody, account *entities.Account) (*SubmitResult, error) {
	if body == nil {
		return nil, &DeliveryError{Message: "cast body is required"}
	}
	if account == nil {
		return nil, &DeliveryError{Message: "account is required"}
	}
	if account.IsReadOnly() {
		return nil, &DeliveryError{
			Code:    "signer.missing",
			Message: fmt.Sprintf("account %s (fid %d) is read-only and cannot sign casts", account.Name, account.FID),
		}
	}

	payload, err := c.sign(body, account)
	if err != nil {
		return nil, &DeliveryError{Message: fmt.Sprintf("failed to sign cast: %v", err)}
	}

	var (
		result  *SubmitResult
		lastErr *DeliveryError
	)
	err = retry.Do(
		func() error {
			out, err := c.breaker.Execute(func() (any, error) {
				return c.post(ctx, payload)
			})
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				lastErr = &DeliveryError{Code: "hub.unavailable", Message: "hub is unavailable, try again shortly"}
				return retry.Unrecoverable(lastErr)
			}
			if err != nil {
				de, ok := IsDeliveryError(err)
				if !ok {
					de = &DeliveryError{Message: err.Error()}
				}
				lastErr = de
				if !de.Temporary() {
					return retry.Unrecoverable(de)
				}
				return de
			}
			result = out.(*SubmitResult)
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying cast submission", zap.Uint("attempt", n), zap.Uint64("fid", account.FID), zap.Error(err))
		}),
	)
	if err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, &DeliveryError{Message: err.Error()}
	}

	return result, nil
}

func (c *client) sign(body *entities.CastBody, account *entities.Account) (*submitRequest, error) {
	data, err := json.Marshal(&messageData{
		FID:       account.FID,
		Timestamp: c.now().Unix(),
		Cast:      body,
	})
	if err != nil {
		return nil, err
	}

	signature := ed25519.Sign(account.SignerPrivateKey, data)
	publicKey := account.SignerPrivateKey.Public().(ed25519.PublicKey)

	return &submitRequest{
		Data:      data,
		Signer:    "0x" + hex.EncodeToString(publicKey),
		Signature: "0x" + hex.EncodeToString(signature),
	}, nil
}

func (c *client) post(ctx context.Context, payload *submitRequest) (*SubmitResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &DeliveryError{Message: fmt.Sprintf("failed to encode submission: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/casts", bytes.NewReader(raw))
	if err != nil {
		return nil, &DeliveryError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("hub request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, &DeliveryError{Message: err.Error()}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read hub response: %v", err)}
	}

	c.logger.Debug("hub request completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var hubErr errorResponse
		_ = json.Unmarshal(respBody, &hubErr)
		message := hubErr.Details
		if message == "" {
			message = fmt.Sprintf("hub returned HTTP %d", resp.StatusCode)
		}
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Code: hubErr.ErrCode, Message: message}
	}

	var result SubmitResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode hub response: %v", err)}
	}

	return &result, nil
}
