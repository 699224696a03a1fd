// Package generator is the HTTP client of the external image service.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/config"
	"github.com/iliyamo/design-studio/internal/metrics"
)

// Request is the body of POST /generate.
type Request struct {
	Prompt          string `json:"prompt"`
	ClothingType    string `json:"clothing_type"`
	Color           string `json:"color"`
	LogoBase64      string `json:"logo_base64,omitempty"`
	LogoPosition    string `json:"logo_position,omitempty"`
	UserPhotoBase64 string `json:"user_photo_base64,omitempty"`
	ViewAngle       string `json:"view_angle,omitempty"`
}

// Response is the body returned by the image service.
type Response struct {
	Success              bool   `json:"success"`
	ImageBase64          string `json:"image_base64"`
	CompositeImageBase64 string `json:"composite_image_base64,omitempty"`
	RevisedPrompt        string `json:"revised_prompt,omitempty"`
	Error                string `json:"error,omitempty"`
}

// Failure classifies a provider error.
type Failure int

const (
	Unavailable Failure = iota
	ContentRejected
	RateLimited
)

func (f Failure) String() string {
	switch f {
	case ContentRejected:
		return "content_rejected"
	case RateLimited:
		return "rate_limited"
	}
	return "unavailable"
}

// Error is returned for every failed render.  The provider's own payload
// is logged by the client and never stored here.
type Error struct {
	Failure Failure
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image service %s (status %d): %v", e.Failure, e.Status, e.Err)
	}
	return fmt.Sprintf("image service %s (status %d)", e.Failure, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// FailureOf returns the classification of err, Unavailable when err is not
// an *Error.
func FailureOf(err error) Failure {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Failure
	}
	return Unavailable
}

const maxErrorBody = 4 << 10

// Client calls the image service through a circuit breaker.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewClient builds a client from cfg.  The per-call deadline is cfg.Timeout.
func NewClient(cfg config.GeneratorConfig, log *zap.Logger) *Client {
	c := &Client{
		baseURL: cfg.URL,
		timeout: cfg.Timeout,
		http:    &http.Client{},
		log:     log.Named("generator"),
	}
	failures := cfg.BreakerFailureLimit
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "image-service",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures ||
				(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5)
		},
		// a rejected prompt says nothing about the provider's health
		IsSuccessful: func(err error) bool {
			return err == nil || FailureOf(err) == ContentRejected
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			c.log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// Generate renders req.  The call is bounded by the client timeout on top
// of whatever deadline ctx already carries.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Response{}, &Error{Failure: Unavailable, Status: http.StatusServiceUnavailable, Err: err}
		}
		return Response{}, err
	}
	return out.(Response), nil
}

func (c *Client) do(ctx context.Context, req Request) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, &Error{Failure: Unavailable, Err: fmt.Errorf("marshal request: %w", err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return Response{}, &Error{Failure: Unavailable, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warn("image service call failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Response{}, &Error{Failure: Unavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("image service returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return Response{}, &Error{Failure: classify(resp.StatusCode), Status: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, &Error{Failure: Unavailable, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !out.Success || out.ImageBase64 == "" {
		c.log.Warn("image service reported failure", zap.String("provider_error", out.Error))
		return Response{}, &Error{Failure: Unavailable, Status: resp.StatusCode, Err: errors.New("render unsuccessful")}
	}
	return out, nil
}

func classify(status int) Failure {
	switch status {
	case http.StatusBadRequest:
		return ContentRejected
	case http.StatusTooManyRequests:
		return RateLimited
	}
	return Unavailable
}

const enhanceTimeout = 30 * time.Second

type enhanceResponse struct {
	EnhancedPrompt string `json:"enhanced_prompt"`
}

// Enhance asks the image service to rewrite a prompt.  It is skipped while
// the breaker is open and never counts against it.
func (c *Client) Enhance(ctx context.Context, req EnhanceRequest) (string, error) {
	if c.breaker.State() == gobreaker.StateOpen {
		return "", &Error{Failure: Unavailable, Status: http.StatusServiceUnavailable, Err: gobreaker.ErrOpenState}
	}
	ctx, cancel := context.WithTimeout(ctx, enhanceTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Failure: Unavailable, Err: fmt.Errorf("marshal request: %w", err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/enhance", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Failure: Unavailable, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &Error{Failure: Unavailable, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Failure: classify(resp.StatusCode), Status: resp.StatusCode}
	}

	var out enhanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Failure: Unavailable, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return strings.TrimSpace(out.EnhancedPrompt), nil
}

// Health probes GET /health on the image service.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image service health: status %d", resp.StatusCode)
	}
	return nil
}

// State reports the breaker state.
func (c *Client) State() string { return c.breaker.State().String() }
