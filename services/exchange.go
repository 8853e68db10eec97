package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
)

const defaultExchangeAPIURL = "https://api.exchangerate-api.com/v4/latest/"

// ErrRateUnavailable is returned in fail-closed mode when a rate cannot be
// resolved (upstream failure or missing currency pair).
var ErrRateUnavailable = errors.New("exchange rate unavailable")

type latestRatesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// ExchangeService resolves conversion rates from the latest-rates API.
// Whole rate maps are cached per base currency, so an aggregation pass costs
// one outbound call per distinct source currency, not one per transaction.
//
// The degrade policy is explicit: fail-open (the default, matching the
// historical behavior) treats an unresolvable rate as 1.0 with a warning;
// fail-closed surfaces the error to the caller.
type ExchangeService struct {
	baseURL  string
	client   *http.Client
	rates    *cache.Cache
	failOpen bool
}

// NewExchangeService builds a service from the environment
// (EXCHANGE_API_URL, EXCHANGE_FAIL_OPEN).
func NewExchangeService() *ExchangeService {
	baseURL := os.Getenv("EXCHANGE_API_URL")
	if baseURL == "" {
		baseURL = defaultExchangeAPIURL
	}
	failOpen := os.Getenv("EXCHANGE_FAIL_OPEN") != "false"

	return NewExchangeServiceWith(baseURL, &http.Client{Timeout: 10 * time.Second}, failOpen)
}

// NewExchangeServiceWith builds a service with explicit dependencies.
func NewExchangeServiceWith(baseURL string, client *http.Client, failOpen bool) *ExchangeService {
	return &ExchangeService{
		baseURL:  baseURL,
		client:   client,
		rates:    cache.New(1*time.Hour, 2*time.Hour),
		failOpen: failOpen,
	}
}

// FailOpen reports the configured degrade policy.
func (s *ExchangeService) FailOpen() bool {
	return s.failOpen
}

// RateMap returns the full rate map for a base currency, fetching it at most
// once per cache TTL.
func (s *ExchangeService) RateMap(base string) (map[string]float64, error) {
	if cached, found := s.rates.Get(base); found {
		return cached.(map[string]float64), nil
	}

	resp, err := s.client.Get(s.baseURL + base)
	if err != nil {
		return nil, fmt.Errorf("fetching rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching rates for %s: status %d", base, resp.StatusCode)
	}

	var body latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rates for %s: %w", base, err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("no rates returned for %s", base)
	}

	s.rates.Set(base, body.Rates, cache.DefaultExpiration)
	return body.Rates, nil
}

// Rate returns the multiplier converting one unit of from into to, applying
// the configured degrade policy when the rate cannot be resolved.
func (s *ExchangeService) Rate(from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}

	ratesMap, err := s.RateMap(from)
	if err != nil {
		if s.failOpen {
			log.Printf("⚠️ Failed to fetch exchange rate for %s, using 1.0: %v", from, err)
			return 1, nil
		}
		return 0, ErrRateUnavailable
	}

	rate, ok := ratesMap[to]
	if !ok || rate == 0 {
		if s.failOpen {
			log.Printf("⚠️ No %s→%s rate available, using 1.0", from, to)
			return 1, nil
		}
		return 0, ErrRateUnavailable
	}

	return rate, nil
}

// Snapshot starts a conversion pass into one target currency. The snapshot
// memoizes per-base lookups so repeated conversions within the pass are free.
func (s *ExchangeService) Snapshot(target string) *RateSnapshot {
	return &RateSnapshot{svc: s, target: target, resolved: make(map[string]float64)}
}

// RateSnapshot converts amounts into a single target currency during one
// aggregation pass.
type RateSnapshot struct {
	svc      *ExchangeService
	target   string
	resolved map[string]float64
}

// Target returns the snapshot's target currency.
func (sn *RateSnapshot) Target() string {
	return sn.target
}

// Convert converts amount from the given currency into the snapshot target.
// In fail-closed mode an unresolvable rate returns ErrRateUnavailable.
func (sn *RateSnapshot) Convert(amount float64, from string) (float64, error) {
	if from == sn.target {
		return amount, nil
	}

	rate, ok := sn.resolved[from]
	if !ok {
		var err error
		rate, err = sn.svc.Rate(from, sn.target)
		if err != nil {
			return 0, err
		}
		sn.resolved[from] = rate
	}

	return amount * rate, nil
}
