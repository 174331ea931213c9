package application

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/load-planner/internal/catalog"
	"github.com/eugenenazirov/load-planner/internal/config"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.Trucks = []catalog.TruckClass{{Name: "pickup", MaxWeight: 900}}
	cfg.ContainerMaxGrossWeight = 28000
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	truck, err := app.catalog.Truck("pickup")
	if err != nil {
		t.Fatalf("Truck returned error: %v", err)
	}
	if truck.MaxWeight != 900 {
		t.Fatalf("expected configured truck, got %+v", truck)
	}
	if app.catalog.MaxGrossWeight() != 28000 {
		t.Fatalf("expected max gross weight 28000, got %v", app.catalog.MaxGrossWeight())
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.planner == nil {
		t.Fatalf("expected server, router, planner, and handler to be initialized")
	}
	if app.metrics == nil {
		t.Fatalf("expected metrics recorder when metrics are enabled")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewServesMetricsWhenEnabled(t *testing.T) {
	app, err := New(baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestNewWithoutMetrics(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.MetricsEnabled = false

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if app.metrics != nil {
		t.Fatalf("expected no metrics recorder")
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from /metrics, got %d", rec.Code)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestNewReturnsErrorForInvalidPresets(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Containers = []catalog.ContainerPreset{{Name: "broken", Width: -1, Length: 1, Height: 1}}

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid container presets")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                    port,
		ShutdownGracePeriod:     50 * time.Millisecond,
		ReadHeaderTimeout:       20 * time.Millisecond,
		WriteTimeout:            30 * time.Millisecond,
		IdleTimeout:             40 * time.Millisecond,
		EnableRequestLogging:    false,
		RateLimitRPS:            0,
		RateLimitBurst:          0,
		LogLevel:                "info",
		MetricsEnabled:          true,
		ContainerMaxGrossWeight: catalog.DefaultMaxGrossWeight,
		Containers:              catalog.DefaultContainers(),
		Trucks:                  catalog.DefaultTrucks(),
	}
}
