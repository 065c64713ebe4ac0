package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"

	"directory/internal/metrics"
	"directory/pkg/ratelimit"
	"directory/pkg/retry"
	"directory/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Эндпоинты оракула
const (
	EndpointBalance = "balance"
	EndpointMerit   = "merit"
)

// ErrUnavailable - оракул недоступен (circuit breaker открыт)
var ErrUnavailable = &APIError{Status: http.StatusServiceUnavailable, Message: "balance oracle is unavailable"}

// APIError - ответ оракула с кодом не 2xx. Статус пробрасывается клиенту как есть.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus возвращает HTTP статус ответа оракула
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// ClientConfig настройки клиента оракула
type ClientConfig struct {
	BaseURL string
	TokenID string
	Timeout time.Duration

	RateLimit float64
	RateBurst float64
	Retry     retry.Policy

	// BreakerFailures - подряд идущих сбоев до открытия breaker'а
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client - HTTP клиент оракула баланса и merit PSF токена
type Client struct {
	baseURL string
	tokenID string
	http    *http.Client
	limiter *ratelimit.Keyed
	policy  retry.Policy
	breaker *gobreaker.CircuitBreaker
	log     *utils.Logger
}

// NewClient создает клиента
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	log := utils.L().WithComponent("oracle")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "psf-oracle",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// 4xx - ответ оракула, а не его отказ
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				utils.String("breaker", name),
				utils.String("from", from.String()),
				utils.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokenID: cfg.TokenID,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.NewKeyed(cfg.RateLimit, cfg.RateBurst),
		policy:  cfg.Retry,
		breaker: breaker,
		log:     log,
	}
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type meritResponse struct {
	Merit float64 `json:"merit"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// GetBalance возвращает баланс PSF токена на адресе
func (c *Client) GetBalance(ctx context.Context, address string) (float64, error) {
	var resp balanceResponse
	if err := c.call(ctx, EndpointBalance, address, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// GetMerit возвращает merit (репутацию) адреса
func (c *Client) GetMerit(ctx context.Context, address string) (float64, error) {
	var resp meritResponse
	if err := c.call(ctx, EndpointMerit, address, &resp); err != nil {
		return 0, err
	}
	return resp.Merit, nil
}

func (c *Client) call(ctx context.Context, endpoint, address string, out interface{}) error {
	started := time.Now()

	body, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		throttled, err := c.limiter.Wait(ctx, endpoint)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		if throttled {
			c.log.Debug("oracle request throttled", utils.Endpoint(endpoint))
		}

		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.do(ctx, endpoint, address)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, retry.Permanent(ErrUnavailable)
		}
		if err != nil {
			return nil, err
		}
		return res.([]byte), nil
	})

	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
		if err == ErrUnavailable {
			result = metrics.ResultCircuitOpen
		}
		c.log.Warn("oracle request failed",
			utils.Endpoint(endpoint),
			utils.Address(address),
			utils.Latency(time.Since(started)),
			utils.Err(err),
		)
	}
	metrics.RecordOracleRequest(endpoint, result, time.Since(started))

	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// do выполняет один запрос. Ответы 4xx не повторяются.
func (c *Client) do(ctx context.Context, endpoint, address string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, endpoint, url.PathEscape(address))
	if c.tokenID != "" {
		u += "?tokenId=" + url.QueryEscape(c.tokenID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
		if resp.StatusCode < 500 {
			return nil, retry.Permanent(apiErr)
		}
		return nil, apiErr
	}

	return body, nil
}

func errorMessage(body []byte, fallback string) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 256 {
		return s
	}
	return fallback
}
