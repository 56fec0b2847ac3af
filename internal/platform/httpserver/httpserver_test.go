package httpserver

import (
	"net/http"
	"testing"
	"time"

	"plantas/internal/platform/config"
)

func TestNewDerivesTimeoutsFromConfig(t *testing.T) {
	srv := New(config.Server{Addr: ":9090", RequestTimeout: 10 * time.Second}, http.NewServeMux())

	if srv.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("expected 5s read header timeout, got %v", srv.ReadHeaderTimeout)
	}
	// Read/write timeouts must outlast the per-request middleware timeout.
	if srv.ReadTimeout != 15*time.Second || srv.WriteTimeout != 15*time.Second {
		t.Fatalf("expected 15s read/write timeouts, got %v/%v", srv.ReadTimeout, srv.WriteTimeout)
	}
}

func TestNewDefaultsZeroRequestTimeout(t *testing.T) {
	srv := New(config.Server{Addr: ":8080"}, http.NewServeMux())

	if srv.ReadTimeout != 35*time.Second {
		t.Fatalf("expected default-derived read timeout, got %v", srv.ReadTimeout)
	}
}
