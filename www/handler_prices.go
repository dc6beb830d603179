package www

import (
	"log/slog"
	"net/http"

	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
)

type pricesData struct {
	Day    prices.Day
	Days   []prices.Day
	Points []types.PricePoint
	Limits prices.PriceLimits
}

func (p pricesData) Classify(price float64) prices.Classification {
	return prices.Evaluate(p.Limits, price)
}

func (s *Server) NewPricesHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		day, ok := dayParam(r)
		if !ok {
			http.Error(w, invalidDayMessage, http.StatusBadRequest)
			return
		}

		points, err := s.monitor.Window(r.Context(), day)
		if err != nil {
			logger.Error("handling prices request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		data := pricesData{
			Day:    day,
			Days:   []prices.Day{prices.DayAll, prices.DayToday, prices.DayTomorrow},
			Points: prices.SortByStart(points),
			Limits: s.limits.Get().Limits,
		}

		w.Header().Set("Content-Type", "text/html")
		if err := s.tm.ExecuteToWriter("prices.html", data, w); err != nil {
			logger.Error("handling prices request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
