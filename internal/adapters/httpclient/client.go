// Package httpclient is the outbound HTTP plumbing shared by the places and
// clip adapters: client-side rate limiting, a circuit breaker, and retries on
// 429/5xx honoring Retry-After.
package httpclient

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"hotel_pipeline/internal/adapters/observability"
	"hotel_pipeline/internal/domain"
)

const maxAttempts = 4

// maxBody caps a single response; photos are the largest payloads.
const maxBody = 32 << 20

type Client struct {
	service string
	hc      *http.Client
	rl      *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func New(service string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        service,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// not-found and auth answers are valid responses, not upstream faults
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound) ||
				errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return &Client{
		service: service,
		hc:      &http.Client{Timeout: timeout},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		cb:      cb,
	}
}

// Do sends the request built by newReq (called once per attempt) and returns
// the response body of a 2xx answer. 404 maps to domain.ErrNotFound, 401/403 to
// domain.ErrUnauthorized.
func (c *Client) Do(ctx context.Context, endpoint string, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.retry(ctx, endpoint, newReq)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", c.service, err)
	}
	return body, err
}

func (c *Client) retry(ctx context.Context, endpoint string, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		// build a fresh request each attempt
		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "hotel-pipeline/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			resp.Body.Close()
			return b, err

		case http.StatusNoContent:
			resp.Body.Close()
			return nil, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, domain.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return nil, domain.ErrUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%s remote %d", c.service, resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%s bad status %d: %s", c.service, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff: 200ms, 400ms, 800ms... with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
