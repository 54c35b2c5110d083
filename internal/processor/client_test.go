package processor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProcessor поднимает процессор, который отвечает на /api/payments/{id} через reply.
func newProcessor(t *testing.T, reply func(w http.ResponseWriter, id string)) *Client {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		id, ok := strings.CutPrefix(r.URL.Path, "/api/payments/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		reply(w, id)
	}))
	t.Cleanup(ts.Close)

	c, err := NewClient(ts.URL + "/")
	require.NoError(t, err)
	return c
}

func jsonReply(body string) func(http.ResponseWriter, string) {
	return func(w http.ResponseWriter, _ string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestPaymentStatus_Decisions(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		want       Decision
		wantReason string
	}{
		{name: "registered", body: `{"payment":"PAY-1","status":"REGISTERED"}`, want: DecisionPending},
		{name: "processing", body: `{"payment":"PAY-1","status":"PROCESSING"}`, want: DecisionPending},
		{name: "approved", body: `{"payment":"PAY-1","status":"APPROVED"}`, want: DecisionApproved},
		{
			name:       "declined keeps reason",
			body:       `{"payment":"PAY-1","status":"DECLINED","reason":"insufficient funds"}`,
			want:       DecisionDeclined,
			wantReason: "insufficient funds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newProcessor(t, jsonReply(tt.body))

			res, err := c.PaymentStatus(context.Background(), "PAY-1")
			require.NoError(t, err)
			assert.Equal(t, "PAY-1", res.PaymentID)
			assert.Equal(t, tt.want, res.Decision)
			assert.Equal(t, tt.wantReason, res.Reason)
		})
	}
}

func TestPaymentStatus_RejectsForeignPayment(t *testing.T) {
	c := newProcessor(t, jsonReply(`{"payment":"PAY-2","status":"APPROVED"}`))

	res, err := c.PaymentStatus(context.Background(), "PAY-1")
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Nil(t, res)
}

func TestPaymentStatus_UnknownStatus(t *testing.T) {
	c := newProcessor(t, jsonReply(`{"payment":"PAY-1","status":"REFUNDED"}`))

	_, err := c.PaymentStatus(context.Background(), "PAY-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFUNDED")
}

func TestPaymentStatus_Throttled(t *testing.T) {
	tests := []struct {
		name   string
		header string
		check  func(t *testing.T, d time.Duration)
	}{
		{name: "seconds", header: "5", check: func(t *testing.T, d time.Duration) { assert.Equal(t, 5*time.Second, d) }},
		{name: "missing header", header: "", check: func(t *testing.T, d time.Duration) { assert.Equal(t, defaultRetryAfter, d) }},
		{
			name:   "http date",
			header: time.Now().Add(time.Minute).UTC().Format(http.TimeFormat),
			check: func(t *testing.T, d time.Duration) {
				assert.Greater(t, d, 50*time.Second)
				assert.LessOrEqual(t, d, time.Minute)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newProcessor(t, func(w http.ResponseWriter, _ string) {
				if tt.header != "" {
					w.Header().Set("Retry-After", tt.header)
				}
				w.WriteHeader(http.StatusTooManyRequests)
			})

			_, err := c.PaymentStatus(context.Background(), "PAY-1")
			var throttled *ThrottledError
			require.True(t, errors.As(err, &throttled), "got %v", err)
			tt.check(t, throttled.RetryAfter)
		})
	}
}

func TestPaymentStatus_Unregistered(t *testing.T) {
	for _, code := range []int{http.StatusNoContent, http.StatusNotFound} {
		c := newProcessor(t, func(w http.ResponseWriter, _ string) { w.WriteHeader(code) })

		_, err := c.PaymentStatus(context.Background(), "PAY-1")
		assert.ErrorIs(t, err, ErrUnregistered, "code %d", code)
	}
}

func TestPaymentStatus_ServerError(t *testing.T) {
	c := newProcessor(t, func(w http.ResponseWriter, _ string) { w.WriteHeader(http.StatusBadGateway) })

	_, err := c.PaymentStatus(context.Background(), "PAY-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnregistered)
}

func TestNewClient_Address(t *testing.T) {
	c, err := NewClient("localhost:8081")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081", c.endpoint.String())

	_, err = NewClient("ftp://processor")
	assert.Error(t, err)

	_, err = NewClient("http://")
	assert.Error(t, err)
}
