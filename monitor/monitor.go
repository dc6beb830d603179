package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/icodeforyou/spotprice-go/metrics"
	"github.com/icodeforyou/spotprice-go/notify"
	"github.com/icodeforyou/spotprice-go/porssisahko"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

var ErrUpdateInProgress = errors.New("price update already in progress")

// Status is the outcome of one successful update.
type Status struct {
	Current        types.PricePoint      `json:"current"`
	Next           types.PricePoint      `json:"next"`
	Classification prices.Classification `json:"classification"`
	Settings       prices.Settings       `json:"settings"`
	Alerted        bool                  `json:"alerted"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

type StatusFunc func(ctx context.Context, s Status)

type Monitor struct {
	logger    *slog.Logger
	provider  types.PricePointProvider
	store     *prices.LimitsStore
	loc       *time.Location
	notifiers []notify.Notifier
	now       func() time.Time

	updating sync.Mutex

	mu       sync.RWMutex
	last     maybe.Maybe[Status]
	onStatus []StatusFunc
}

func New(provider types.PricePointProvider, store *prices.LimitsStore, loc *time.Location, notifiers ...notify.Notifier) *Monitor {
	if loc == nil {
		loc = time.UTC
	}
	return &Monitor{
		logger:    slog.Default().With("module", "monitor"),
		provider:  provider,
		store:     store,
		loc:       loc,
		notifiers: notifiers,
		now:       time.Now,
		last:      maybe.None[Status](),
	}
}

// OnStatus registers fn to be called after every successful update.
func (m *Monitor) OnStatus(fn StatusFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = append(m.onStatus, fn)
}

func (m *Monitor) Last() maybe.Maybe[Status] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *Monitor) Location() *time.Location {
	return m.loc
}

// Update fetches the latest prices, evaluates the current price against the
// stored limits and notifies when the notify mode asks for it. Overlapping
// calls are rejected with ErrUpdateInProgress.
func (m *Monitor) Update(ctx context.Context) (Status, error) {
	if !m.updating.TryLock() {
		m.logger.Warn("skipping price update, previous one still running")
		return Status{}, ErrUpdateInProgress
	}
	defer m.updating.Unlock()

	points, err := m.fetch(ctx)
	if err != nil {
		return Status{}, err
	}

	now := m.now()
	current, next, err := prices.SelectCurrentAndNext(points, now)
	if err != nil {
		return Status{}, fmt.Errorf("selecting current price: %w", err)
	}

	settings := m.store.Get()
	status := Status{
		Current:        current,
		Next:           next,
		Classification: prices.Evaluate(settings.Limits, current.Price),
		Settings:       settings,
		UpdatedAt:      now,
	}
	metrics.RecordPrices(current.Price, next.Price)

	if settings.Notify.ShouldAlert(status.Classification) {
		status.Alerted = true
		m.alert(ctx, prices.Alert{
			Point:          current,
			Classification: status.Classification,
			Limits:         settings.Limits,
			At:             now,
		})
	}

	m.logger.Info("prices updated",
		slog.Float64("current", current.Price),
		slog.Float64("next", next.Price),
		slog.String("classification", string(status.Classification)))

	m.mu.Lock()
	m.last = maybe.Some(status)
	hooks := append([]StatusFunc(nil), m.onStatus...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx, status)
	}

	return status, nil
}

// Window fetches the latest prices and returns the ones starting on the requested day(s).
func (m *Monitor) Window(ctx context.Context, day prices.Day) ([]types.PricePoint, error) {
	points, err := m.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return prices.SelectDay(points, day, m.now(), m.loc), nil
}

func (m *Monitor) fetch(ctx context.Context) ([]types.PricePoint, error) {
	start := time.Now()
	points, err := m.provider.FetchLatest(ctx)
	metrics.RecordFetch(fetchResult(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	for _, a := range prices.CheckContiguous(points) {
		metrics.RecordAnomaly(string(a.Kind))
		m.logger.Warn("price feed anomaly", slog.String("anomaly", a.String()))
	}
	return points, nil
}

func (m *Monitor) alert(ctx context.Context, a prices.Alert) {
	metrics.RecordAlert(string(a.Classification))
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, a); err != nil {
			m.logger.Error("notifier failed", slog.Any("error", err))
		}
	}
}

func fetchResult(err error) string {
	var transportErr *porssisahko.TransportError
	var formatErr *porssisahko.FormatError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &formatErr):
		return "format_error"
	default:
		return "error"
	}
}
