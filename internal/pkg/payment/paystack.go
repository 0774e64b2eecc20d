package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
)

// ErrRejected 支付方明确拒绝了请求 (4xx)，不计入熔断失败
var ErrRejected = errors.New("payment request rejected")

// UpstreamError 携带支付方返回的状态码和消息，便于原样返回给前端
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("paystack: status %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return ErrRejected
	}
	return nil
}

// PaystackClient 通过熔断器调用 Paystack REST 接口，不做自动重试
type PaystackClient struct {
	baseURL     string
	secretKey   string
	callbackURL string
	http        *http.Client
	cb          *gobreaker.CircuitBreaker
}

var _ Processor = (*PaystackClient)(nil)

func NewPaystackClient(cfg *config.PaystackConfig) *PaystackClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	st := gobreaker.Settings{
		Name:        "paystack",
		MaxRequests: 1,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("支付网关熔断状态变化", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &PaystackClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		http:        &http.Client{Timeout: timeout},
		cb:          gobreaker.NewCircuitBreaker(st),
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeBody struct {
	Email       string       `json:"email"`
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency,omitempty"`
	CallbackURL string       `json:"callback_url,omitempty"`
	Metadata    Metadata     `json:"metadata"`
	MobileMoney *mobileMoney `json:"mobile_money,omitempty"`
}

type mobileMoney struct {
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

// Initialize POST /transaction/initialize
func (c *PaystackClient) Initialize(ctx context.Context, p InitializeParams) (*Authorization, error) {
	body := initializeBody{
		Email:       p.Email,
		Amount:      p.Amount,
		Currency:    p.Currency,
		CallbackURL: c.callbackURL,
		Metadata: Metadata{
			Plan:          p.Plan,
			PaymentMethod: p.PaymentMethod,
			Phone:         p.Phone,
			Provider:      p.Provider,
		},
	}
	if p.PaymentMethod == MethodMobile {
		body.MobileMoney = &mobileMoney{Phone: p.Phone, Provider: p.Provider}
	}

	var auth Authorization
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", body, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

type verifyData struct {
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Channel   string          `json:"channel"`
	Customer  customer        `json:"customer"`
	Metadata  json.RawMessage `json:"metadata"`
}

// Verify GET /transaction/verify/:reference
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, errors.New("paystack: empty reference")
	}
	var data verifyData
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, err
	}
	meta := ParseMetadata(data.Metadata)
	return &Transaction{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount,
		Currency:  data.Currency,
		Channel:   data.Channel,
		Email:     data.Customer.Email,
		Plan:      meta.Plan,
	}, nil
}

func (c *PaystackClient) call(ctx context.Context, method, path string, in, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("paystack 暂不可用: %w", err)
	}
	return err
}

func (c *PaystackClient) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("paystack: 序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("paystack: 构造请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paystack: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("paystack: 读取响应失败: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &UpstreamError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("paystack: 解析响应失败: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Status {
		status := resp.StatusCode
		if status < 300 {
			status = http.StatusBadGateway
		}
		return &UpstreamError{StatusCode: status, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("paystack: 解析 data 失败: %w", err)
		}
	}
	return nil
}
