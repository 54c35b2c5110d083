package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingBody struct {
	Ticket   string `json:"ticket"`
	Quantity int    `json:"quantity"`
}

// bookingHandler разбирает заявку на бронирование и отвечает JSON с идентификатором заказа.
func bookingHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Encoding"))

		var req bookingBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "ORD001",
			"tickets":  strings.Repeat(req.Ticket+",", req.Quantity),
			"quantity": req.Quantity,
		})
	}
}

func gzipBytes(t *testing.T, data []byte) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return &buf
}

func readBody(t *testing.T, res *http.Response) []byte {
	t.Helper()

	var r io.Reader = res.Body
	if res.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(res.Body)
		require.NoError(t, err)
		defer gr.Close()
		r = gr
	}
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	return body
}

func TestGzipMiddleware_JSONResponse(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		gzipRequest    bool
		wantEncoding   string
	}{
		{name: "compressed for gzip clients", acceptEncoding: "gzip, deflate", wantEncoding: "gzip"},
		{name: "plain without accept-encoding", acceptEncoding: "", wantEncoding: ""},
		{name: "gzip request and response", acceptEncoding: "gzip", gzipRequest: true, wantEncoding: "gzip"},
		{name: "gzip request plain response", acceptEncoding: "identity", gzipRequest: true, wantEncoding: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(bookingBody{Ticket: "Child Ticket", Quantity: 3})
			require.NoError(t, err)

			var body io.Reader = bytes.NewReader(payload)
			if tt.gzipRequest {
				body = gzipBytes(t, payload)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
			req.Header.Set("Content-Type", "application/json")
			if tt.gzipRequest {
				req.Header.Set("Content-Encoding", "gzip")
			}
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}

			rec := httptest.NewRecorder()
			GzipMiddleware(bookingHandler(t)).ServeHTTP(rec, req)

			res := rec.Result()
			defer res.Body.Close()

			assert.Equal(t, http.StatusCreated, res.StatusCode)
			assert.Equal(t, tt.wantEncoding, res.Header.Get("Content-Encoding"))
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

			var got struct {
				ID       string `json:"id"`
				Quantity int    `json:"quantity"`
			}
			require.NoError(t, json.Unmarshal(readBody(t, res), &got))
			assert.Equal(t, "ORD001", got.ID)
			assert.Equal(t, 3, got.Quantity)
		})
	}
}

func TestGzipMiddleware_SkipsUncompressibleTypes(t *testing.T) {
	h := GzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/map.png", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestGzipMiddleware_CorruptedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("not gzip at all"))
	req.Header.Set("Content-Encoding", "gzip")

	rec := httptest.NewRecorder()
	GzipMiddleware(bookingHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
