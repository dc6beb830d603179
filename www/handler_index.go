package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/spotprice-go/database"
	"github.com/icodeforyou/spotprice-go/monitor"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

const recentAlerts = 10

type indexData struct {
	Status   maybe.Maybe[monitor.Status]
	Settings prices.Settings
	Modes    []prices.NotifyMode
	Alerts   []database.AlertRow
	Flashes  flashes
}

func (s *Server) NewIndexHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		alerts, err := s.store.GetAlerts(r.Context(), recentAlerts)
		if err != nil {
			logger.Error("handling index request", slog.Any("error", err))
		}

		data := indexData{
			Status:   s.monitor.Last(),
			Settings: s.limits.Get(),
			Modes:    []prices.NotifyMode{prices.NotifyLower, prices.NotifyHigher, prices.NotifyBoth},
			Alerts:   alerts,
			Flashes:  s.popFlashes(w, r),
		}

		w.Header().Set("Content-Type", "text/html")
		if err := s.tm.ExecuteToWriter("index.html", data, w); err != nil {
			logger.Error("handling index request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
