package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type refusalSender interface {
	SendRefusal(ctx context.Context, issueID int) error
}

type syncRunner interface {
	Trigger(scope hh.VacancyScope) bool
}

// Server exposes the refusal and synchronization triggers over HTTP.
type Server struct {
	refusals refusalSender
	syncs    syncRunner
	http     *http.Server
}

func New(address string, refusals refusalSender, syncs syncRunner) (*Server, error) {
	if refusals == nil {
		return nil, errors.New("refusal sender is nil")
	}
	if syncs == nil {
		return nil, errors.New("sync runner is nil")
	}

	s := &Server{refusals: refusals, syncs: syncs}
	s.http = &http.Server{
		Addr:              address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/issues/{id}/refusal_response", s.refusalResponse)
	r.Post("/sync/{scope}", s.startSync)
	return r
}

func (s *Server) ListenAndServe() error {
	log.Infof("http server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) refusalResponse(w http.ResponseWriter, r *http.Request) {
	issueID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || issueID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid issue id"})
		return
	}

	if err = s.refusals.SendRefusal(r.Context(), issueID); err != nil {
		log.Errorf("failed to send refusal for issue %d: %v", issueID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "refusal failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"issue_id": issueID, "status": "accepted"})
}

func (s *Server) startSync(w http.ResponseWriter, r *http.Request) {
	scope, err := hh.ParseVacancyScope(chi.URLParam(r, "scope"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if !s.syncs.Trigger(scope) {
		writeJSON(w, http.StatusConflict, map[string]string{"scope": string(scope), "status": "already running"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"scope": string(scope), "status": "started"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"status":     ww.Status(),
		}).Debugf("%s %s in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}
