package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/convert"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/porssisahko"
	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/lmittmann/tint"
)

func main() {
	baseUrl := flag.String("url", porssisahko.DefaultBaseUrl, "price API base url")
	timezone := flag.String("tz", defaultTimezone(), "timezone for the today/tomorrow windows")
	lower := flag.Float64("lower", prices.DefaultLowerLimit, "lower price limit in c/kWh")
	upper := flag.Float64("upper", prices.DefaultUpperLimit, "upper price limit in c/kWh")
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
	})))

	if err := hours.SetGuiTimezone(*timezone); err != nil {
		slog.Error("invalid timezone", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	points, err := porssisahko.New(*baseUrl, porssisahko.DefaultTimeout).FetchLatest(ctx)
	if err != nil {
		slog.Error("fetching prices failed", slog.Any("error", err))
		os.Exit(1)
	}

	printPrices(os.Stdout, points, time.Now(), hours.GuiLocation(), prices.PriceLimits{Lower: *lower, Upper: *upper})
}

// defaultTimezone matches the service, which computes days in UTC unless configured.
func defaultTimezone() string {
	return config.AppConfigGui{}.GetTimezone()
}

func printPrices(w io.Writer, points []types.PricePoint, now time.Time, loc *time.Location, limits prices.PriceLimits) {
	current, next, err := prices.SelectCurrentAndNext(points, now)
	if err != nil {
		slog.Warn("no current price", slog.Any("error", err))
	} else {
		fmt.Fprintf(w, "Current: %s (%s)\nNext:    %s\n",
			convert.PriceString(current.Price), prices.Evaluate(limits, current.Price), convert.PriceString(next.Price))
	}

	for _, day := range []prices.Day{prices.DayToday, prices.DayTomorrow} {
		fmt.Fprintf(w, "\n%s\n", day)
		window := prices.SortByStart(prices.SelectDay(points, day, now, loc))
		if len(window) == 0 {
			fmt.Fprintln(w, "  not available yet")
			continue
		}
		for _, p := range window {
			fmt.Fprintf(w, "  %s %s  %s\n", p.StartDate.In(loc).Format("2006-01-02"),
				p.StartDate.In(loc).Format("15:04"), convert.PriceString(p.Price))
		}
	}
}
