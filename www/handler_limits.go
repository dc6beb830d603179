package www

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/icodeforyou/spotprice-go/convert"
	"github.com/icodeforyou/spotprice-go/prices"
)

func parseLimit(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(value, ",", ".")), 64)
	if err != nil {
		return 0, fmt.Errorf("%s limit is not a number", name)
	}
	return v, nil
}

func parseSettingsForm(r *http.Request) (prices.Settings, error) {
	if err := r.ParseForm(); err != nil {
		return prices.Settings{}, fmt.Errorf("invalid form: %w", err)
	}
	lower, err := parseLimit("lower", r.PostForm.Get("lower"))
	if err != nil {
		return prices.Settings{}, err
	}
	upper, err := parseLimit("upper", r.PostForm.Get("upper"))
	if err != nil {
		return prices.Settings{}, err
	}
	return prices.NewSettings(lower, upper, r.PostForm.Get("notify"))
}

// applySettings makes the settings active and persists them. A failed save
// leaves the new settings active until restart.
func (s *Server) applySettings(r *http.Request, logger *slog.Logger, settings prices.Settings) error {
	s.limits.Set(settings)
	logger.Info("price limits updated",
		slog.Float64("lower", settings.Limits.Lower),
		slog.Float64("upper", settings.Limits.Upper),
		slog.String("notify", string(settings.Notify)))
	if err := s.store.SaveSettings(r.Context(), settings); err != nil {
		logger.Error("saving price limits failed", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *Server) NewLimitsFormHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		settings, err := parseSettingsForm(r)
		switch {
		case err != nil:
			s.addFlash(w, r, flashErrorKey, err.Error())
		case s.applySettings(r, logger, settings) != nil:
			s.addFlash(w, r, flashErrorKey, "Limits are active but could not be saved")
		default:
			s.addFlash(w, r, flashInfoKey, fmt.Sprintf("Limits set to %s - %s",
				convert.PriceString(settings.Limits.Lower), convert.PriceString(settings.Limits.Upper)))
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
