package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icodeforyou/spotprice-go/monitor"
)

type Updater interface {
	Update(ctx context.Context) (monitor.Status, error)
}

// NewPriceTask runs one update right away, so there is a status to show
// before the first scheduled run, and returns the task for the scheduler.
func NewPriceTask(logger *slog.Logger, updater Updater, timeout time.Duration) func() {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger.Info("running initial price update")
	runPriceTask(logger, updater, timeout)

	return func() { runPriceTask(logger, updater, timeout) }
}

func runPriceTask(logger *slog.Logger, updater Updater, timeout time.Duration) {
	logger.Debug("running price task...")

	// Allow for the notifiers on top of the fetch itself.
	ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
	defer cancel()

	status, err := updater.Update(ctx)
	if errors.Is(err, monitor.ErrUpdateInProgress) {
		logger.Warn("price task skipped", slog.Any("error", err))
		return
	}
	if err != nil {
		logger.Error("price task error", slog.Any("error", err))
		return
	}

	logger.Info("price task done",
		slog.Float64("current", status.Current.Price),
		slog.String("classification", string(status.Classification)),
		slog.Bool("alerted", status.Alerted))
}
