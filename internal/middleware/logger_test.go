package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ORD001"))
	})

	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	Logger(zap.New(core))(next).ServeHTTP(httptest.NewRecorder(), r)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusCreated) {
		t.Fatalf("status field = %v, want %d", fields["status"], http.StatusCreated)
	}
	if fields["size"] != int64(6) {
		t.Fatalf("size field = %v, want 6", fields["size"])
	}
	if fields["method"] != http.MethodPost || fields["uri"] != "/api/orders" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
