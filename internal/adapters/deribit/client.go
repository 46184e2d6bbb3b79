package deribit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/optmark/internal/domain"
)

const (
	defaultBaseURL = "https://www.deribit.com/api/v2"

	// Deribit da ~20 créditos/s a endpoints públicos sin autenticar; dejamos margen.
	publicRatePerSec = 15
	publicBurst      = 15

	maxRetries    = 4 // 5 intentos en total
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de la API pública de Deribit con rate limiting y
// retries. Es seguro para uso concurrente: todas las goroutines de un ciclo
// comparten el mismo Client.
type Client struct {
	http      *http.Client
	baseURL   string
	limiter   *rate.Limiter
	retryWait time.Duration
}

// Option ajusta un Client en su construcción.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (timeouts, transport).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetryWait cambia la espera base del backoff exponencial.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// WithRateLimit cambia el límite de requests por segundo.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

// NewClient crea un Client contra baseURL. Si está vacío usa producción.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		limiter:   rate.NewLimiter(publicRatePerSec, publicBurst),
		retryWait: baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get hace un GET a un método público y decodifica el campo "result" en out.
func (c *Client) get(ctx context.Context, method string, params url.Values, out any) error {
	u := c.baseURL + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var env envelope
	err := c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, &env)
	if err != nil {
		return fmt.Errorf("GET %s: %w", method, err)
	}

	if env.Error != nil {
		return fmt.Errorf("GET %s: api error %d %s: %w", method, env.Error.Code, env.Error.Message, domain.ErrNoData)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return fmt.Errorf("GET %s: empty result: %w", method, domain.ErrNoData)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("GET %s: decode result: %w", method, err)
	}
	return nil
}

// doWithRetry ejecuta la función con backoff exponencial. Agotar los reintentos
// devuelve domain.ErrUnavailable; un 4xx no se reintenta.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out *envelope) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			lastErr = err
			slog.Debug("deribit request failed", "attempt", attempt+1, "err", err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			slog.Warn("deribit transient status", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			// Deribit responde 400 con el error JSON-RPC en el body (instrumento
			// inexistente, etc.): es un dato ausente, no un fallo transitorio.
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if json.Unmarshal(body, out) == nil && out.Error != nil {
				return nil
			}
			return fmt.Errorf("client error %d: %s: %w", resp.StatusCode, string(body), domain.ErrNoData)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d attempts: %v: %w", maxRetries+1, lastErr, domain.ErrUnavailable)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.retryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
