package www

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gorilla/sessions"
	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/database"
	"github.com/icodeforyou/spotprice-go/metrics"
	"github.com/icodeforyou/spotprice-go/monitor"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

type PriceMonitor interface {
	Update(ctx context.Context) (monitor.Status, error)
	Last() maybe.Maybe[monitor.Status]
	Window(ctx context.Context, day prices.Day) ([]types.PricePoint, error)
}

type Store interface {
	GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) (database.LogPage, error)
	GetAlerts(ctx context.Context, limit int) ([]database.AlertRow, error)
	SaveSettings(ctx context.Context, s prices.Settings) error
}

type Server struct {
	logger   *slog.Logger
	config   config.AppConfigApi
	monitor  PriceMonitor
	limits   *prices.LimitsStore
	store    Store
	hub      *Hub
	tm       *TemplateManager
	sessions sessions.Store
	handler  http.Handler
}

//go:embed static
var embeddedStaticDir embed.FS

// NewServer builds the handlers. The websocket hub lives until ctx is done.
func NewServer(ctx context.Context, mon PriceMonitor, limits *prices.LimitsStore, store Store, config config.AppConfigApi) (*Server, error) {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, config.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization: %w", err)
	}

	sessionStore, err := newSessionStore(config.SessionKey)
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger:   logger,
		config:   config,
		monitor:  mon,
		limits:   limits,
		store:    store,
		hub:      NewHub(logger),
		tm:       tm,
		sessions: sessionStore,
	}

	go s.hub.Run(ctx)

	s.handler = metrics.InstrumentHandler(s.routes())
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}
	handlerLogger := func(name string) *slog.Logger {
		return s.logger.With(slog.String("handler", name))
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", staticFilesHandler(s.config.WwwDir)))

	mux.Handle("/{$}", logReqMW(s.NewIndexHandler(handlerLogger("index"))))
	mux.Handle("/prices", logReqMW(s.NewPricesHandler(handlerLogger("prices"))))
	mux.Handle("/chart", logReqMW(s.NewChartHandler(handlerLogger("chart"))))
	mux.Handle("/limits", logReqMW(s.NewLimitsFormHandler(handlerLogger("limits"))))
	mux.Handle("/log", logReqMW(NewLogHandler(handlerLogger("log"), s.store, s.tm)))

	mux.Handle("/api/status", logReqMW(s.NewStatusApiHandler(handlerLogger("api_status"))))
	mux.Handle("/api/update", logReqMW(s.NewUpdateApiHandler(handlerLogger("api_update"))))
	mux.Handle("/api/prices", logReqMW(s.NewPricesApiHandler(handlerLogger("api_prices"))))
	mux.Handle("/api/limits", logReqMW(s.NewLimitsApiHandler(handlerLogger("api_limits"))))

	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		client, err := NewClient(s.hub, w, r)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}
		s.hub.register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

type statusMessage struct {
	Type   string         `json:"type"`
	Status monitor.Status `json:"status"`
}

// Broadcast pushes a status to every connected websocket client.
func (s *Server) Broadcast(ctx context.Context, status monitor.Status) {
	buf, err := json.Marshal(statusMessage{Type: "status", Status: status})
	if err != nil {
		s.logger.Error("encoding status for broadcast failed", slog.Any("error", err))
		return
	}
	s.hub.Broadcast(ctx, buf)
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.Any("error", err))
		}

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
		}
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
