package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.LoadJobs()
	if err != nil {
		s.logger.Error("list jobs failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

// handleRefresh runs a full check before answering, so it blocks for as long
// as the cycle takes.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	report, err := s.checker.Run(r.Context())
	if err != nil {
		s.logger.Error("refresh failed", "request_id", reqID, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("refresh finished", "request_id", reqID, "cycle", report.ID)

	s.handleListJobs(w, r)
}
