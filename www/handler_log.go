package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/spotprice-go/database"
)

func NewLogHandler(logger *slog.Logger, store Store, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html")

		if page := positiveIntOrDefault(r.URL, "page", 0); page > 0 {
			pageSize := positiveIntOrDefault(r.URL, "pageSize", 25)

			result, err := store.GetLogEntries(r.Context(), slog.LevelDebug, page, pageSize)
			if err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			data := struct {
				Page     int
				PageSize int
				HasMore  bool
				Entries  []database.LogEntryRow
			}{
				Page:     page + 1,
				PageSize: pageSize,
				HasMore:  result.HasMore,
				Entries:  result.Entries,
			}

			if err := tm.ExecuteToWriter("log_entries.html", data, w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		} else {
			if err := tm.ExecuteToWriter("log.html", nil, w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}
