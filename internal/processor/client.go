// Package processor предоставляет клиент для внешнего платёжного процессора.
// Клиент переводит ответы процессора в решение по платежу: ждать, принять или отклонить.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Статусы платежа в ответах процессора.
const (
	StatusRegistered = "REGISTERED"
	StatusProcessing = "PROCESSING"
	StatusApproved   = "APPROVED"
	StatusDeclined   = "DECLINED"
)

const (
	requestTimeout    = 5 * time.Second
	defaultRetryAfter = time.Second
)

var (
	// ErrUnregistered означает, что процессор ещё не знает о платеже.
	ErrUnregistered = errors.New("payment not registered with processor")
	// ErrMismatch означает, что процессор ответил по другому платежу.
	ErrMismatch = errors.New("processor answered for a different payment")
)

// ThrottledError сообщает, что процессор ограничил частоту запросов.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("payment processor throttled, retry after %s", e.RetryAfter)
}

// Decision описывает итог обработки платежа процессором.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionApproved
	DecisionDeclined
)

// Result содержит решение процессора по одному платежу.
// Reason заполняется процессором для отклонённых платежей.
type Result struct {
	PaymentID string
	Decision  Decision
	Reason    string
}

type statusResponse struct {
	Payment string `json:"payment"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// Client обращается к платёжному процессору по HTTP.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
}

// NewClient создаёт клиент процессора. Адрес без схемы считается http.
func NewClient(address string) (*Client, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(strings.TrimRight(address, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse payment processor address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("payment processor address: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("payment processor address %q has no host", address)
	}

	return &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// PaymentStatus запрашивает у процессора решение по платежу paymentID.
// Ограничение частоты возвращается как *ThrottledError, неизвестный платёж как ErrUnregistered.
func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.JoinPath("api", "payments", paymentID).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request payment %s: %w", paymentID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, &ThrottledError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	case http.StatusNoContent, http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnregistered, paymentID)
	default:
		return nil, fmt.Errorf("payment %s: unexpected processor response %d", paymentID, resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode payment %s: %w", paymentID, err)
	}
	if body.Payment != paymentID {
		return nil, fmt.Errorf("%w: asked %s, got %q", ErrMismatch, paymentID, body.Payment)
	}

	res := &Result{PaymentID: body.Payment, Reason: body.Reason}
	switch body.Status {
	case StatusRegistered, StatusProcessing:
		res.Decision = DecisionPending
	case StatusApproved:
		res.Decision = DecisionApproved
	case StatusDeclined:
		res.Decision = DecisionDeclined
	default:
		return nil, fmt.Errorf("payment %s: unknown processor status %q", paymentID, body.Status)
	}
	return res, nil
}

// retryAfter разбирает Retry-After в секундах или в виде HTTP-даты.
func retryAfter(v string) time.Duration {
	if v == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}
