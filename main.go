package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/database"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/logging"
	"github.com/icodeforyou/spotprice-go/monitor"
	"github.com/icodeforyou/spotprice-go/notify"
	"github.com/icodeforyou/spotprice-go/porssisahko"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/task"
	"github.com/icodeforyou/spotprice-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := hours.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set GUI timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("spotprice is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	limits := prices.NewLimitsStore(initialSettings(ctx, logger, db, cnfg))
	cnfg.WatchLimits(logger.With("module", "config"), func(settings prices.Settings) {
		limits.Set(settings)
		if err := db.SaveSettings(context.Background(), settings); err != nil {
			logger.Error("failed to save limits from config", slog.Any("error", err))
		}
		logger.Info("limits reloaded from config",
			slog.Float64("lower", settings.Limits.Lower),
			slog.Float64("upper", settings.Limits.Upper),
			slog.String("notify", string(settings.Notify)))
	})

	notifiers := []notify.Notifier{
		notify.NewLog(logger.With("module", "alert")),
		notify.NewDatabase(db),
	}

	var mq *notify.Mqtt
	if cnfg.Mqtt.Enabled() {
		mq = notify.NewMqtt(cnfg.Mqtt.Host, cnfg.Mqtt.Port, cnfg.Mqtt.Username, cnfg.Mqtt.Password, cnfg.Mqtt.Topic)
		if err := mq.Connect(); err != nil {
			logger.Error("mqtt connection error, alerts will not be published", slog.Any("error", err))
			mq = nil
		} else {
			defer mq.Disconnect()
			notifiers = append(notifiers, mq)
		}
	}

	client := porssisahko.New(cnfg.PriceApi.BaseUrl, cnfg.PriceApi.Timeout)
	mon := monitor.New(client, limits, hours.GuiLocation(), notifiers...)

	if mq != nil {
		mon.OnStatus(func(ctx context.Context, s monitor.Status) {
			if err := mq.PublishStatus(ctx, s.Current, s.Next, s.Classification, s.UpdatedAt); err != nil {
				logger.Warn("failed to publish status", slog.Any("error", err))
			}
		})
	}

	server, err := www.NewServer(ctx, mon, limits, db, cnfg.Api)
	if err != nil {
		panic(fmt.Sprintf("failed to create server: %v", err))
	}
	mon.OnStatus(server.Broadcast)

	tasks := task.NewTasks(mon, db, cnfg)
	if err := tasks.Run(); err != nil {
		panic(fmt.Sprintf("failed to schedule tasks: %v", err))
	}
	defer tasks.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server.Run(ctx)
}

// initialSettings prefers limits saved from the web UI over the config file.
func initialSettings(ctx context.Context, logger *slog.Logger, db *database.Database, cnfg *config.AppConfig) prices.Settings {
	saved, ok, err := db.LoadSettings(ctx)
	if err != nil {
		logger.Warn("failed to load saved limits, using config", slog.Any("error", err))
	} else if ok {
		return saved
	}

	settings, err := cnfg.Limits.Settings()
	if err != nil {
		// Load has already validated the limits.
		return prices.DefaultSettings()
	}
	return settings
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
