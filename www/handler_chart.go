package www

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/slice"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/www/chartjs"
)

func (s *Server) NewChartHandler(logger *slog.Logger) http.HandlerFunc {
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
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		chart := priceChart(prices.SortByStart(points), day, s.limits.Get().Limits)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(chart); err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode chart", http.StatusInternalServerError)
			return
		}
	}
}

func priceChart(points []types.PricePoint, day prices.Day, limits prices.PriceLimits) chartjs.Chart {
	labelLayout := "15:04"
	if day == prices.DayAll {
		labelLayout = "Mon 15:04"
	}
	labels := slice.Map(points, func(p types.PricePoint) string {
		return p.StartDate.In(hours.GuiLocation()).Format(labelLayout)
	})
	data := slice.Map(points, func(p types.PricePoint) *float64 {
		return chartjs.FixedFloat64(p.Price, 3)
	})

	chart := chartjs.NewChart("", labels).
		WithDataset("Price", chartjs.ColorYellow, data).
		WithConstantLine("Lower limit", chartjs.ColorGreen, limits.Lower).
		WithConstantLine("Upper limit", chartjs.ColorRed, limits.Upper)

	maxVal := max(limits.Lower, limits.Upper)
	minVal := min(0, limits.Lower, limits.Upper)
	for _, p := range points {
		maxVal = max(maxVal, p.Price)
		minVal = min(minVal, p.Price)
	}
	chart.Options.Scales[chartjs.YAxisPrice] = chart.Options.Scales[chartjs.YAxisPrice].
		WithTitle("Price (c/kWh)").
		WithMinAndMax(math.Floor(minVal), math.Ceil(maxVal))

	return chart
}
