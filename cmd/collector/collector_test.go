package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unklstewy/sweepscope/pkg/adsb"
	"github.com/unklstewy/sweepscope/pkg/config"
)

type fakeSource struct {
	aircraft []adsb.Aircraft
	failures int
	calls    int
}

func (f *fakeSource) GetAircraft(ctx context.Context, lat, lon, radiusNM float64) ([]adsb.Aircraft, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream unavailable")
	}
	return f.aircraft, nil
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Close() error { return nil }

type fakeStore struct {
	mu       sync.Mutex
	upserted map[string]time.Time
	cleanups int
	failICAO string
}

func newFakeStore() *fakeStore {
	return &fakeStore{upserted: make(map[string]time.Time)}
}

func (s *fakeStore) UpsertAircraft(ctx context.Context, ac adsb.Aircraft, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ac.ICAO == s.failICAO {
		return errors.New("constraint violation")
	}
	s.upserted[ac.ICAO] = now
	return nil
}

func (s *fakeStore) CleanupOldData(ctx context.Context, hideAfter, deleteAfter time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups++
	return nil
}

func (s *fakeStore) CountVisible(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserted), nil
}

func testCollector(src *fakeSource, st *fakeStore) *Collector {
	return &Collector{
		source:         src,
		store:          st,
		latitude:       47.458056,
		longitude:      8.548056,
		radiusNM:       20,
		updateInterval: time.Hour,
		retry: adsb.RetryConfig{
			MaxRetries:   2,
			InitialDelay: time.Millisecond,
			MaxDelay:     2 * time.Millisecond,
			Multiplier:   2.0,
		},
		hideAfter:   2 * time.Minute,
		deleteAfter: time.Hour,
	}
}

// TestCollectorUpdate tests fetching and storing a batch.
func TestCollectorUpdate(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		failICAO   string
		wantStored []string
		wantFailed int
	}{
		{"All stored", 0, "", []string{"4b1814", "4b1815"}, 0},
		{"Recovered by retry", 2, "", []string{"4b1814", "4b1815"}, 0},
		{"Retries exhausted", 3, "", nil, 1},
		{"Store error skips one", 0, "4b1815", []string{"4b1814"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				failures: tt.failures,
				aircraft: []adsb.Aircraft{
					{ICAO: "4b1814", Latitude: 47.5, Longitude: 8.6},
					{ICAO: "4b1815", Latitude: 47.4, Longitude: 8.5},
					{ICAO: "000000"}, // no position
				},
			}
			st := newFakeStore()
			st.failICAO = tt.failICAO

			c := testCollector(src, st)
			c.update(context.Background())

			if len(st.upserted) != len(tt.wantStored) {
				t.Fatalf("Expected %d stored, got %v", len(tt.wantStored), st.upserted)
			}
			for _, icao := range tt.wantStored {
				if _, ok := st.upserted[icao]; !ok {
					t.Errorf("Expected %s to be stored", icao)
				}
			}
			if c.totalFailures != tt.wantFailed {
				t.Errorf("Expected %d failures, got %d", tt.wantFailed, c.totalFailures)
			}
			if c.totalUpdates != 1 {
				t.Errorf("Expected 1 update, got %d", c.totalUpdates)
			}
		})
	}
}

// TestCollectorRun tests the initial fetch and shutdown.
func TestCollectorRun(t *testing.T) {
	src := &fakeSource{aircraft: []adsb.Aircraft{{ICAO: "4b1814", Latitude: 47.5, Longitude: 8.6}}}
	st := newFakeStore()
	c := testCollector(src, st)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n, _ := st.CountVisible(ctx, time.Time{}); n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Initial fetch never stored the aircraft")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// TestCollectorCleanup tests the maintenance passes.
func TestCollectorCleanup(t *testing.T) {
	st := newFakeStore()
	c := testCollector(&fakeSource{}, st)

	c.cleanup(context.Background())
	c.printStats(context.Background())

	if st.cleanups != 1 {
		t.Errorf("Expected 1 cleanup, got %d", st.cleanups)
	}
}

// TestCollectorSource tests source selection.
func TestCollectorSource(t *testing.T) {
	cfg := config.DefaultConfig()

	src, err := collectorSource(&cfg.ADSB, "")
	if err != nil || src.Type != config.SourceOpenSky {
		t.Errorf("Expected default opensky source, got %+v, %v", src, err)
	}

	src, err = collectorSource(&cfg.ADSB, config.SourceAirplanesLive)
	if err != nil || src.Type != config.SourceAirplanesLive {
		t.Errorf("Expected airplanes.live override, got %+v, %v", src, err)
	}

	if _, err := collectorSource(&cfg.ADSB, config.SourcePostgres); !errors.Is(err, errNoHTTPSource) {
		t.Errorf("Expected errNoHTTPSource for postgres, got %v", err)
	}

	for i := range cfg.ADSB.Sources {
		cfg.ADSB.Sources[i].Enabled = cfg.ADSB.Sources[i].Type == config.SourcePostgres
	}
	if _, err := collectorSource(&cfg.ADSB, ""); !errors.Is(err, errNoHTTPSource) {
		t.Errorf("Expected errNoHTTPSource with only postgres enabled, got %v", err)
	}
}

// TestNewClient tests client construction per source type.
func TestNewClient(t *testing.T) {
	for _, typ := range []string{config.SourceOpenSky, config.SourceAirplanesLive} {
		c, err := newClient(config.ADSBSource{Type: typ, RateLimitSeconds: 1})
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if c.Name() != typ {
			t.Errorf("Expected %s, got %s", typ, c.Name())
		}
	}
	if _, err := newClient(config.ADSBSource{Type: config.SourcePostgres}); err == nil {
		t.Error("Expected error for postgres")
	}
}
