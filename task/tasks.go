package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icodeforyou/spotprice-go/config"
	"github.com/robfig/cron/v3"
)

const maintenanceRunAt = "30 2 * * *"

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PriceTask       func()
	MaintenanceTask func()
}

func NewTasks(updater Updater, store MaintenanceStore, cnfg *config.AppConfig) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		PriceTask:       NewPriceTask(logger.With(slog.String("task", "price")), updater, cnfg.PriceApi.Timeout),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), store, cnfg),
	}
}

func (t *Tasks) Run() error {
	if _, err := t.cron.AddFunc(t.cnfg.PriceApi.RunAt, t.PriceTask); err != nil {
		return fmt.Errorf("scheduling price task %q: %w", t.cnfg.PriceApi.RunAt, err)
	}
	if _, err := t.cron.AddFunc(maintenanceRunAt, t.MaintenanceTask); err != nil {
		return fmt.Errorf("scheduling maintenance task: %w", err)
	}
	t.cron.Start()
	return nil
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
