package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/config"
)

// TestConnString tests connection string construction.
func TestConnString(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.example.com",
		Port:     5433,
		Username: "scope",
		Password: "secret",
		Database: "adsb",
		SSLMode:  "require",
	}

	got := connString(cfg)
	want := "host=db.example.com port=5433 user=scope password=secret dbname=adsb sslmode=require"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// unreachable points at a port nothing listens on.
func unreachable() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:   "postgres",
		Host:     "127.0.0.1",
		Port:     1,
		Username: "scope",
		Database: "adsb",
		SSLMode:  "disable",
	}
}

// TestConnect tests that an unreachable server fails at ping time.
func TestConnect(t *testing.T) {
	db, err := Connect(context.Background(), unreachable())
	if err == nil {
		db.Close()
		t.Skip("Something is listening on 127.0.0.1:1")
	}
	if !strings.Contains(err.Error(), "failed to ping database") {
		t.Errorf("Expected ping error, got: %v", err)
	}
}

// TestConnectWithRetry tests that retries give up and keep the last error.
func TestConnectWithRetry(t *testing.T) {
	retry := adsb.RetryConfig{
		MaxRetries:   1,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}

	db, err := ConnectWithRetry(context.Background(), unreachable(), retry)
	if err == nil {
		db.Close()
		t.Skip("Something is listening on 127.0.0.1:1")
	}
	if db != nil {
		t.Error("Expected nil db on failure")
	}
	if !strings.Contains(err.Error(), "failed to ping database") {
		t.Errorf("Expected last connection error, got: %v", err)
	}
}
