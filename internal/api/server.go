package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/pipeline"
)

// WalletService computes the results served by the API.
type WalletService interface {
	Stats(ctx context.Context, address string) (pipeline.StatsResult, error)
	Wrapped(ctx context.Context, address string, year int) (pipeline.WrappedReport, error)
}

// SnapshotHistory lists the persisted wrapped runs of an address.
type SnapshotHistory interface {
	History(ctx context.Context, address string) ([]models.WrappedSnapshot, error)
}

// Server represents the API server with necessary dependencies. History is
// optional.
type Server struct {
	Service WalletService
	History SnapshotHistory
}

// NewServer initializes a new API server instance.
func NewServer(service WalletService) *Server {
	return &Server{
		Service: service,
	}
}

// Routes registers the API endpoints on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", s.StatsHandler)
	mux.HandleFunc("GET /wrapped", s.WrappedHandler)
	mux.HandleFunc("GET /snapshots", s.SnapshotsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// StatsHandler handles the /stats endpoint.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "Missing 'address' query parameter", http.StatusBadRequest)
		return
	}

	result, err := s.Service.Stats(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// WrappedHandler handles the /wrapped endpoint. The year defaults to the
// current one.
func (s *Server) WrappedHandler(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "Missing 'address' query parameter", http.StatusBadRequest)
		return
	}

	year := 0
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		var err error
		if year, err = strconv.Atoi(yearStr); err != nil {
			http.Error(w, "Invalid year. Use YYYY.", http.StatusBadRequest)
			return
		}
	}

	report, err := s.Service.Wrapped(r.Context(), address, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// SnapshotsHandler handles the /snapshots endpoint.
func (s *Server) SnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		http.Error(w, "Snapshot history is not enabled", http.StatusNotFound)
		return
	}
	address := r.URL.Query().Get("address")
	if err := pipeline.ValidateAddress(address); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshots, err := s.History.History(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, snapshots)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidAddress), errors.Is(err, pipeline.ErrInvalidYear):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrTimeout):
		http.Error(w, "Upstream providers timed out", http.StatusGatewayTimeout)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("requestID", w.Header().Get("X-Request-ID")).Msg("error handling request")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// withRequestLog tags every request with an ID and logs its duration.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		log.Debug().
			Str("requestID", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}

// StartServer serves the API until ctx is canceled, then shuts down gracefully.
func StartServer(ctx context.Context, addr string, server *Server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           withRequestLog(server.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API server is running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}
