package services

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newRatesServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		base := strings.TrimPrefix(r.URL.Path, "/")
		switch base {
		case "EUR":
			fmt.Fprint(w, `{"rates": {"USD": 1.1, "GBP": 0.85}}`)
		case "USD":
			fmt.Fprint(w, `{"rates": {"EUR": 0.9, "GBP": 0.77}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRateSameCurrency(t *testing.T) {
	svc := NewExchangeServiceWith("http://invalid.test/", http.DefaultClient, false)
	rate, err := svc.Rate("EUR", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 1 {
		t.Errorf("Rate(EUR, EUR) = %v, want 1", rate)
	}
}

func TestRateFetchesAndCaches(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	svc := NewExchangeServiceWith(server.URL+"/", server.Client(), false)

	rate, err := svc.Rate("EUR", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 1.1 {
		t.Errorf("Rate(EUR, USD) = %v, want 1.1", rate)
	}

	// second pair off the same base must come from cache
	rate, err = svc.Rate("EUR", "GBP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.85 {
		t.Errorf("Rate(EUR, GBP) = %v, want 0.85", rate)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("outbound calls = %d, want 1", n)
	}
}

func TestRateFailClosed(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	svc := NewExchangeServiceWith(server.URL+"/", server.Client(), false)

	t.Run("unknown base", func(t *testing.T) {
		_, err := svc.Rate("XXX", "USD")
		if !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("err = %v, want ErrRateUnavailable", err)
		}
	})

	t.Run("missing pair", func(t *testing.T) {
		_, err := svc.Rate("EUR", "JPY")
		if !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("err = %v, want ErrRateUnavailable", err)
		}
	})
}

func TestRateFailOpen(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	svc := NewExchangeServiceWith(server.URL+"/", server.Client(), true)

	t.Run("unknown base degrades to 1.0", func(t *testing.T) {
		rate, err := svc.Rate("XXX", "USD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rate != 1 {
			t.Errorf("rate = %v, want 1", rate)
		}
	})

	t.Run("missing pair degrades to 1.0", func(t *testing.T) {
		rate, err := svc.Rate("EUR", "JPY")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rate != 1 {
			t.Errorf("rate = %v, want 1", rate)
		}
	})
}

func TestSnapshotOneCallPerBase(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	svc := NewExchangeServiceWith(server.URL+"/", server.Client(), false)
	snap := svc.Snapshot("USD")

	amounts := []struct {
		amount float64
		from   string
		want   float64
	}{
		{100, "EUR", 100 * 1.1},
		{50, "EUR", 50 * 1.1},
		{200, "USD", 200},
		{10, "EUR", 10 * 1.1},
	}
	for _, a := range amounts {
		got, err := snap.Convert(a.amount, a.from)
		if err != nil {
			t.Fatalf("Convert(%v, %s): %v", a.amount, a.from, err)
		}
		if math.Abs(got-a.want) > 1e-9 {
			t.Errorf("Convert(%v, %s) = %v, want %v", a.amount, a.from, got, a.want)
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("outbound calls = %d, want 1 (one per distinct base)", n)
	}
}
