// Package api exposes the prediction HTTP endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/config"
	"github.com/yourusername/matchcast/internal/models"
)

// Predictor is the pipeline entry point the server dispatches to.
type Predictor interface {
	Predict(ctx context.Context, contestID int64) (*models.CanonicalPrediction, error)
}

// errorResponse is the JSON body returned for all non-2xx outcomes.
type errorResponse struct {
	Error     string `json:"error"`
	ContestID string `json:"contest_id,omitempty"`
}

// Server serves the prediction API.
type Server struct {
	predictor Predictor
	server    *http.Server
	logger    *logrus.Logger
}

// NewServer builds the API server from the server section of the config.
func NewServer(cfg config.ServerConfig, predictor Predictor, logger *logrus.Logger) *Server {
	s := &Server{
		predictor: predictor,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/predictions/{contestID}", s.handlePrediction)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("Prediction API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("prediction API server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown() error {
	s.logger.Info("Prediction API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("contestID")

	contestID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || contestID <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid contest id", raw)
		return
	}

	prediction, err := s.predictor.Predict(r.Context(), contestID)
	if err != nil {
		s.writePredictionError(w, contestID, err)
		return
	}

	s.writeJSON(w, http.StatusOK, prediction)
}

// writePredictionError maps pipeline errors onto HTTP statuses. Unknown
// errors become opaque 500s so internals never leak to callers.
func (s *Server) writePredictionError(w http.ResponseWriter, contestID int64, err error) {
	id := strconv.FormatInt(contestID, 10)

	switch {
	case errors.Is(err, models.ErrInvalidContestID):
		s.writeError(w, http.StatusBadRequest, "invalid contest id", id)
	case errors.Is(err, models.ErrContestNotFound):
		s.writeError(w, http.StatusNotFound, "contest not found", id)
	case errors.Is(err, models.ErrNoFeatures):
		s.writeError(w, http.StatusUnprocessableEntity, "features unavailable for contest", id)
	default:
		s.logger.WithError(err).WithField("contest_id", contestID).Error("Prediction request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error", id)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, contestID string) {
	s.writeJSON(w, status, errorResponse{Error: message, ContestID: contestID})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
