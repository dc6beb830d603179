package notify

import (
	"context"
	"log/slog"

	"github.com/icodeforyou/spotprice-go/convert"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/prices"
)

// Notifier is told about every price alert the user asked for.
type Notifier interface {
	Notify(ctx context.Context, a prices.Alert) error
}

type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, a prices.Alert) error {
	l.logger.WarnContext(ctx, a.Message(),
		slog.String("classification", string(a.Classification)),
		slog.String("price", convert.PriceString(a.Point.Price)),
		slog.String("hour", hours.FormatTimeInGuiTimezone(a.Point.StartDate)),
		slog.Float64("lower", a.Limits.Lower),
		slog.Float64("upper", a.Limits.Upper))
	return nil
}

type AlertStore interface {
	SaveAlert(ctx context.Context, a prices.Alert) error
}

// Database keeps a history of raised alerts.
type Database struct {
	store AlertStore
}

func NewDatabase(store AlertStore) *Database {
	return &Database{store: store}
}

func (d *Database) Notify(ctx context.Context, a prices.Alert) error {
	return d.store.SaveAlert(ctx, a)
}
