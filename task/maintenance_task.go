package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/spotprice-go/config"
)

type MaintenanceStore interface {
	Backup(ctx context.Context) error
	PurgeBackups(ctx context.Context, retentionDays int) error
	PurgeLog(ctx context.Context, maxLogEntries int) error
	PurgeAlerts(ctx context.Context, retentionDays int) error
}

func NewMaintenanceTask(logger *slog.Logger, store MaintenanceStore, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := store.Backup(ctx); err != nil {
			logger.Error("database backup error", slog.Any("error", err))
		}

		if err := store.PurgeBackups(ctx, cnfg.Database.GetBackupRetentionDays()); err != nil {
			logger.Error("backup maintenance error", slog.Any("error", err))
		}

		if err := store.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
		}

		if err := store.PurgeAlerts(ctx, cnfg.Database.GetDataRetentionDays()); err != nil {
			logger.Error("alert maintenance error", slog.Any("error", err))
		}

		logger.Info("maintenance task done")
	}
}
