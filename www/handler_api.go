package www

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/spotprice-go/monitor"
	"github.com/icodeforyou/spotprice-go/prices"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response failed", slog.Any("error", err))
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, apiError{Error: msg})
}

func (s *Server) NewStatusApiHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(logger, w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		status, ok := s.monitor.Last().Get()
		if !ok {
			writeError(logger, w, http.StatusNotFound, "no price status available yet")
			return
		}
		writeJSON(logger, w, http.StatusOK, status)
	}
}

func (s *Server) NewUpdateApiHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(logger, w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		status, err := s.monitor.Update(r.Context())
		switch {
		case errors.Is(err, monitor.ErrUpdateInProgress):
			writeError(logger, w, http.StatusConflict, err.Error())
		case err != nil:
			logger.Error("handling update request", slog.Any("error", err))
			writeError(logger, w, http.StatusBadGateway, err.Error())
		default:
			writeJSON(logger, w, http.StatusOK, status)
		}
	}
}

func (s *Server) NewPricesApiHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(logger, w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		day, ok := dayParam(r)
		if !ok {
			writeError(logger, w, http.StatusBadRequest, invalidDayMessage)
			return
		}
		points, err := s.monitor.Window(r.Context(), day)
		if err != nil {
			logger.Error("handling prices request", slog.Any("error", err))
			writeError(logger, w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(logger, w, http.StatusOK, points)
	}
}

type limitsRequest struct {
	Limits *prices.PriceLimits `json:"limits"`
	Notify string              `json:"notify"`
}

func (s *Server) NewLimitsApiHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(logger, w, http.StatusOK, s.limits.Get())

		case http.MethodPut:
			var req limitsRequest
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(logger, w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if req.Limits == nil {
				writeError(logger, w, http.StatusBadRequest, "limits are required")
				return
			}
			settings, err := prices.NewSettings(req.Limits.Lower, req.Limits.Upper, req.Notify)
			if err != nil {
				writeError(logger, w, http.StatusBadRequest, err.Error())
				return
			}
			if err := s.applySettings(r, logger, settings); err != nil {
				writeError(logger, w, http.StatusInternalServerError, "limits are active but could not be saved")
				return
			}
			writeJSON(logger, w, http.StatusOK, settings)

		default:
			writeError(logger, w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}
