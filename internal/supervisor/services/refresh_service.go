// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/recdash/internal/catalog"
	"github.com/tomtom215/recdash/internal/config"
	"github.com/tomtom215/recdash/internal/logging"
	"github.com/tomtom215/recdash/internal/metrics"
	"github.com/tomtom215/recdash/internal/snapshot"
)

// BreakerName labels the reload circuit breaker in logs and metrics.
const BreakerName = "catalog-reload"

// CatalogReloader is satisfied by *catalog.Manager.
type CatalogReloader interface {
	Current() *catalog.Catalog
	Sources() []string
	Reload(ctx context.Context) (*catalog.Catalog, error)
}

// Invalidator drops cached results computed from an older catalog.
// *cache.Cache satisfies it.
type Invalidator interface {
	Clear()
}

// ReloadNotifier announces a published catalog. *websocket.Hub satisfies it.
type ReloadNotifier interface {
	BroadcastCatalogReloaded(version uint64, tables, failed []string)
}

// RefreshConfig controls polling, throttling and the circuit breaker.
type RefreshConfig struct {
	// Interval between modification time polls. Zero disables polling;
	// reloads then happen only through Trigger.
	Interval time.Duration
	// MinInterval is the minimum spacing between rebuilds.
	MinInterval time.Duration
	// BreakerFailures consecutive failed rebuilds open the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration
}

// RefreshConfigFromData maps the data section of the configuration.
func RefreshConfigFromData(cfg config.DataConfig) RefreshConfig {
	return RefreshConfig{
		Interval:        cfg.RefreshInterval,
		MinInterval:     cfg.ReloadMinInterval,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}
}

// TriggerStatus is the outcome of a manual reload request.
type TriggerStatus string

const (
	// TriggerAccepted means a rebuild was queued.
	TriggerAccepted TriggerStatus = "accepted"
	// TriggerPending means a rebuild was already queued; the requests coalesce.
	TriggerPending TriggerStatus = "pending"
	// TriggerThrottled means the request came sooner than MinInterval allows.
	TriggerThrottled TriggerStatus = "throttled"
)

// RefreshStatus describes the most recent rebuild attempt.
type RefreshStatus struct {
	LastAttempt  time.Time `json:"last_attempt,omitempty"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	LastReason   string    `json:"last_reason,omitempty"`
	BreakerState string    `json:"breaker_state"`
	Polling      bool      `json:"polling"`
}

// RefreshService keeps the published catalog in step with the snapshot files.
//
// Every Interval it fingerprints the modification times of all source files
// and rebuilds the catalog when the fingerprint changes. Trigger queues a
// rebuild regardless of file state. Rebuilds run one at a time inside a
// circuit breaker; a failed rebuild leaves the previous catalog published
// and is retried on the next poll. After each publish the page cache is
// cleared and connected browsers are notified.
type RefreshService struct {
	reloader CatalogReloader
	cache    Invalidator
	notifier ReloadNotifier
	cfg      RefreshConfig

	breaker *gobreaker.CircuitBreaker[*catalog.Catalog]
	limiter *rate.Limiter
	trigger chan struct{}
	now     func() time.Time

	mu     sync.Mutex
	status RefreshStatus
	// seen is the fingerprint of the last successful rebuild.
	seen []string
}

// NewRefreshService creates the service. cache and notifier may be nil.
func NewRefreshService(reloader CatalogReloader, cache Invalidator, notifier ReloadNotifier, cfg RefreshConfig) *RefreshService {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	s := &RefreshService{
		reloader: reloader,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		trigger:  make(chan struct{}, 1),
		now:      time.Now,
	}

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(float64(gobreaker.StateClosed))
	failures := cfg.BreakerFailures
	s.breaker = gobreaker.NewCircuitBreaker[*catalog.Catalog](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Catalog reload circuit breaker state change")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
	return s
}

// Trigger requests a rebuild. It never blocks.
func (s *RefreshService) Trigger() TriggerStatus {
	if !s.limiter.Allow() {
		return TriggerThrottled
	}
	select {
	case s.trigger <- struct{}{}:
		return TriggerAccepted
	default:
		return TriggerPending
	}
}

// Status returns a copy of the current refresh status.
func (s *RefreshService) Status() RefreshStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.BreakerState = s.breaker.State().String()
	st.Polling = s.cfg.Interval > 0
	return st
}

// Serve implements suture.Service. When no catalog has been published yet,
// a rebuild is attempted immediately.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.seen == nil {
		s.seen = s.fingerprint()
	}
	s.mu.Unlock()

	if s.reloader.Current().Version == 0 {
		s.reload(ctx, "startup", s.fingerprint())
	}

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.trigger:
			s.reload(ctx, "manual", s.fingerprint())

		case <-tick:
			fp := s.fingerprint()
			s.mu.Lock()
			changed := !slices.Equal(fp, s.seen)
			s.mu.Unlock()
			if !changed {
				continue
			}
			if err := s.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			s.reload(ctx, "file_change", fp)
		}
	}
}

// String implements fmt.Stringer.
func (s *RefreshService) String() string {
	return "snapshot-refresh"
}

// fingerprint lists "path@mtime" for every source; missing files are
// recorded so that their reappearance counts as a change.
func (s *RefreshService) fingerprint() []string {
	sources := s.reloader.Sources()
	fp := make([]string, 0, len(sources))
	for _, path := range sources {
		mt, err := snapshot.ModTime(path)
		if err != nil {
			fp = append(fp, path+"@missing")
			continue
		}
		fp = append(fp, path+"@"+mt.UTC().Format(time.RFC3339Nano))
	}
	return fp
}

func (s *RefreshService) reload(ctx context.Context, reason string, fp []string) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	started := s.now()
	cat, err := s.breaker.Execute(func() (*catalog.Catalog, error) {
		return s.reloader.Reload(ctx)
	})

	s.mu.Lock()
	s.status.LastAttempt = started
	s.status.LastReason = reason
	if err != nil {
		s.status.LastError = err.Error()
		s.mu.Unlock()

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn().Str("reason", reason).Msg("Catalog reload skipped, circuit breaker open")
			return
		}
		log.Error().Err(err).Str("reason", reason).Msg("Catalog reload failed, keeping previous catalog")
		return
	}
	s.status.LastError = ""
	s.status.LastSuccess = s.now()
	s.seen = fp
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Clear()
	}
	if s.notifier != nil {
		s.notifier.BroadcastCatalogReloaded(cat.Version, cat.LoadedNames(), cat.FailedNames())
	}
	log.Info().
		Str("reason", reason).
		Uint64("version", cat.Version).
		Msg("Catalog reloaded")
}
