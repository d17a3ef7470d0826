// Package sheet fetches reseller analytics from a spreadsheet-backed JSON
// endpoint and normalizes them into typed records.
//
// The upstream is a Google Apps Script web app whose field names drift
// between deployments, so every section and field is read through an ordered
// alias table and coerced independently. Failures never reach callers: a
// failed fetch yields zeroed defaults, and the failure is logged and counted.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/resellerdash/internal/infra"
	"github.com/seenimoa/resellerdash/internal/logging"
	"github.com/seenimoa/resellerdash/pkg/models"
)

// DefaultCacheTTL is how long a successful fetch is served from memory.
const DefaultCacheTTL = 5 * time.Minute

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 8 << 20

// Observer receives fetch telemetry. internal/metrics implements it.
type Observer interface {
	ObserveFetch(outcome string, d time.Duration)
	ObserveCacheHit()
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, time.Duration) {}
func (nopObserver) ObserveCacheHit()                   {}

// Options configures a Gateway. Zero values select defaults.
type Options struct {
	URL          string
	Timeout      time.Duration // per request; default infra.DefaultTimeout
	CacheEnabled bool
	CacheTTL     time.Duration // default DefaultCacheTTL
	Clock        infra.Clock   // default time.Now
	Client       *http.Client  // default: a client with Timeout
	Logger       *slog.Logger
	Observer     Observer
	Breaker      *infra.Breaker // nil disables the breaker
}

// Gateway is the single entry point to the upstream sheet. It is safe for
// concurrent use.
type Gateway struct {
	url      string
	timeout  time.Duration
	client   *http.Client
	clock    infra.Clock
	logger   *slog.Logger
	observer Observer
	breaker  *infra.Breaker
	cache    *infra.Slot[*models.Sections] // nil when caching is off
	group    singleflight.Group
}

// New creates a Gateway.
func New(opts Options) *Gateway {
	g := &Gateway{
		url:      opts.URL,
		timeout:  opts.Timeout,
		client:   opts.Client,
		clock:    opts.Clock,
		logger:   opts.Logger,
		observer: opts.Observer,
		breaker:  opts.Breaker,
	}
	if g.timeout <= 0 {
		g.timeout = infra.DefaultTimeout
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: g.timeout}
	}
	if g.clock == nil {
		g.clock = time.Now
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = logging.Component(g.logger, "sheet")
	if g.observer == nil {
		g.observer = nopObserver{}
	}
	if opts.CacheEnabled {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		g.cache = infra.NewSlot[*models.Sections](ttl, g.clock)
	}
	return g
}

// FetchSnapshot returns the first metrics row of the combined payload, or a
// zeroed snapshot when the fetch fails.
func (g *Gateway) FetchSnapshot(ctx context.Context) models.MetricsSnapshot {
	return g.FetchAllSections(ctx).Snapshot
}

// FetchAllSections returns every dashboard section from one upstream request.
// Within the cache window the same *Sections is returned without a request.
// Any failure yields empty sections and a zeroed snapshot; failures are not
// cached. The returned value must not be modified.
//
// Concurrent misses share one request. That request is detached from the
// callers' cancellation (it stays bounded by the gateway timeout), so a
// caller that gives up receives defaults without failing the others.
func (g *Gateway) FetchAllSections(ctx context.Context) *models.Sections {
	if s, ok := g.cached(); ok {
		return s
	}
	if err := ctx.Err(); err != nil {
		return g.abandon(err)
	}

	shared := context.WithoutCancel(ctx)
	ch := g.group.DoChan("sections", func() (interface{}, error) {
		// A concurrent caller may have filled the cache while we queued.
		if s, ok := g.cached(); ok {
			return s, nil
		}
		s, err := g.fetch(shared)
		if err != nil {
			return models.EmptySections(g.clock()), nil
		}
		if g.cache != nil {
			g.cache.Set(s)
		}
		return s, nil
	})

	select {
	case res := <-ch:
		return res.Val.(*models.Sections)
	case <-ctx.Done():
		return g.abandon(ctx.Err())
	}
}

// abandon returns defaults to a caller whose context ended before a result
// was available. No upstream request is charged to it.
func (g *Gateway) abandon(err error) *models.Sections {
	g.observer.ObserveFetch(OutcomeCancelled, 0)
	g.logger.Debug("caller gave up before sheet fetch completed", "error", err)
	return models.EmptySections(g.clock())
}

// CacheFresh reports whether a cached result is currently being served.
func (g *Gateway) CacheFresh() bool {
	return g.cache != nil && g.cache.IsFresh()
}

// Endpoint returns the configured upstream URL.
func (g *Gateway) Endpoint() string {
	return g.url
}

func (g *Gateway) cached() (*models.Sections, bool) {
	if g.cache == nil {
		return nil, false
	}
	s, ok := g.cache.Get()
	if ok {
		g.observer.ObserveCacheHit()
		g.logger.Debug("serving cached sections", "fetchedAt", s.FetchedAt)
	}
	return s, ok
}

// fetch performs one upstream request and normalizes the result.
func (g *Gateway) fetch(ctx context.Context) (*models.Sections, error) {
	fetchID := uuid.NewString()
	start := time.Now()

	rec, err := infra.Do(g.breaker, func() (record, error) {
		return g.request(ctx)
	})

	outcome := Outcome(err)
	elapsed := time.Since(start)
	g.observer.ObserveFetch(outcome, elapsed)

	if err != nil {
		g.logger.Warn("sheet fetch failed, serving defaults",
			"fetchId", fetchID,
			"outcome", outcome,
			"durationMs", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	s := normalizeSections(rec, g.clock())
	g.logger.Info("sheet fetch",
		"fetchId", fetchID,
		"outcome", outcome,
		"durationMs", elapsed.Milliseconds(),
		"snapshots", len(s.Snapshots),
		"products", len(s.TopProducts),
	)
	return s, nil
}

// request issues the GET and returns the accepted top-level object.
func (g *Gateway) request(ctx context.Context) (record, error) {
	if g.url == "" {
		return nil, ErrNoEndpoint
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, _, err := infra.DoGet(ctx, g.client, g.url, nil)
	if err != nil {
		var httpErr *infra.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &StatusError{
				StatusCode: httpErr.StatusCode,
				Status:     httpErr.Status,
				Title:      pageTitle([]byte(httpErr.Body)),
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if err := checkSuccess(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
