package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type predictResponse struct {
	Result float64 `json:"result"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.deps.Predictor.Predict(r.Context(), body)
	if err != nil {
		s.writePredictError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, predictResponse{Result: p.Result})
}

// writePredictError maps tagged domain errors to responses. Validation and
// computation messages reach the client; anything else is logged and hidden.
func (s *Server) writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	msg, public := domain.PublicMessage(err)
	if public {
		s.logger.Debug("prediction rejected", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.logger.Error("prediction failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusNotFound, "prediction history is disabled")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	preds, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("list prediction history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"predictions": preds})
}
