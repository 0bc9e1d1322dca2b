package storeapi

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

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"example.com/storefront/internal/infra/resilience"
	"example.com/storefront/internal/logger"
)

// APIError is a non-2xx answer from the store backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store api: status %d", e.Status)
	}
	return fmt.Sprintf("store api: status %d: %s", e.Status, e.Message)
}

var errServer = errors.New("store api server error")

type response struct {
	status int
	body   []byte
}

// Client talks to the storefront REST backend. Each call is a single attempt
// guarded by a circuit breaker; only transport failures and 5xx answers
// count against it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[response]
	logger     *zap.Logger
}

func New(baseURL string, timeout time.Duration, breaker resilience.Settings, log *zap.Logger) *Client {
	log = logger.OrNop(log).Named("storeapi")
	if breaker.Name == "" {
		breaker.Name = "storeapi"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker: resilience.NewBreaker[response](breaker, func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}, log),
		logger: log,
	}
}

// do sends one request. A decoded *APIError is returned for 4xx and 5xx.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.breaker.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			return response{}, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
		if err != nil {
			return response{}, err
		}
		r := response{status: res.StatusCode, body: data}
		if res.StatusCode >= 500 {
			return r, fmt.Errorf("%w: %d", errServer, res.StatusCode)
		}
		return r, nil
	})
	if err != nil && !errors.Is(err, errServer) {
		c.logger.Warn("store api call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return resilience.Unavailable(err)
	}

	if resp.status < 200 || resp.status > 299 {
		apiErr := &APIError{Status: resp.status}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resp.body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
