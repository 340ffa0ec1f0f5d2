package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TrevorS/fuzzydbscan"
	"github.com/TrevorS/fuzzydbscan/adapter"
	"github.com/TrevorS/fuzzydbscan/internal/config"
)

// ClusterRequest is the body of POST /v1/cluster. Exactly one of Points
// and Records must be set; Records are reduced to coordinates by Fields.
type ClusterRequest struct {
	config.Run
	Points  [][]float64      `json:"points" validate:"required_without=Records,excluded_with=Records"`
	Records []map[string]any `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) cluster(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	logger := s.logger.With(
		zap.String("run_id", runID),
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
	)

	req, err := s.decodeClusterRequest(w, r)
	if err != nil {
		s.fail(w, logger, err)
		return
	}

	points := req.Points
	if req.Records != nil {
		points, err = adapter.Coerce(req.Records, req.Fields...)
		if err != nil {
			s.fail(w, logger, err)
			return
		}
	}

	start := time.Now()
	res, err := fuzzydbscan.ClusterVectors(points, req.Clustering(logger))
	if err != nil {
		s.fail(w, logger, err)
		return
	}
	s.metrics.observeRun(res, time.Since(start))

	writeJSON(w, http.StatusOK, adapter.NewOutput(runID, res))
}

func (s *Server) decodeClusterRequest(w http.ResponseWriter, r *http.Request) (ClusterRequest, error) {
	req := ClusterRequest{Run: config.Default()}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, err
		}
		return req, fmt.Errorf("decode body: %v: %w", err, errBadRequest)
	}
	if err := config.Validate(req); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Server) fail(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("cluster request failed", zap.Error(err))
	} else {
		logger.Debug("cluster request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, adapter.ErrInvalidRecord),
		errors.Is(err, fuzzydbscan.ErrInvalidConfig),
		errors.Is(err, fuzzydbscan.ErrDimensionMismatch),
		errors.Is(err, fuzzydbscan.ErrNonFinite):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
