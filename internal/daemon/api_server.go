package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"gleaner/internal/api"
	"gleaner/internal/config"
	"gleaner/internal/discovery"
	"gleaner/internal/logging"
	"gleaner/internal/review"
	"gleaner/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/discovery/run", srv.handleTriggerRun)
	mux.HandleFunc("/api/runs", srv.handleRuns)
	mux.HandleFunc("/api/runs/", srv.handleRun)
	mux.HandleFunc("/api/grants", srv.handleGrants)
	mux.HandleFunc("/api/grants/high-confidence", srv.handleHighConfidence)
	mux.HandleFunc("/api/grants/", srv.handleGrant)
	mux.HandleFunc("/api/notifications/test", srv.handleTestNotification)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":          status.Running,
		"database_path":    status.DatabasePath,
		"lock_file_path":   status.LockFilePath,
		"api_bind":         status.APIBind,
		"schedule_enabled": status.ScheduleEnabled,
		"schedule_cron":    status.ScheduleCron,
		"sources":          status.RegisteredSource,
	})
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.daemon.grants.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.TriggerRunRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	run, err := s.daemon.TriggerRun(r.Context(), discovery.RunOptions{
		Sources: req.Sources,
		Notify:  req.Notify,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.FromRunDetail(run))
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	response, err := s.daemon.runs.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	detail, err := s.daemon.runs.Describe(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *apiServer) handleGrants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query, err := grantQueryFromURL(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	response, err := s.daemon.grants.List(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleHighConfidence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	minConfidence := 0.0
	if raw := strings.TrimSpace(r.URL.Query().Get("min_confidence")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid min_confidence")
			return
		}
		minConfidence = parsed
	}
	grants, err := s.daemon.discovery.HighConfidenceGrants(r.Context(), minConfidence)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	response := api.GrantListResponse{Total: len(grants), Grants: make([]api.GrantSummary, 0, len(grants))}
	for _, grant := range grants {
		response.Grants = append(response.Grants, api.FromGrant(grant, s.daemon.cfg.Discovery.AutoApproveThreshold))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleGrant serves GET /api/grants/{id} and the review actions
// POST /api/grants/{id}/approve, /reject, and /mark-duplicate.
func (s *apiServer) handleGrant(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/grants/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		s.writeError(w, http.StatusNotFound, "grant not found")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		detail, err := s.daemon.grants.Describe(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, detail)
	case "approve":
		s.handleApprove(w, r, id)
	case "reject":
		s.handleReject(w, r, id)
	case "mark-duplicate":
		s.handleMarkDuplicate(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "grant not found")
	}
}

func (s *apiServer) handleApprove(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ApproveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := s.daemon.review.Approve(r.Context(), review.ApproveRequest{
		GrantID:       id,
		ReviewedBy:    req.ReviewedBy,
		Notes:         req.Notes,
		Overrides:     overridesFromMap(req.Overrides),
		CreateProgram: req.CreateProgram,
		ProgramKey:    req.ProgramKey,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	response := api.ReviewResponse{Message: "grant approved"}
	if entry != nil {
		response.Message = "grant approved and program created"
		response.CreatedProgramKey = entry.ProgramKey
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleReject(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.RejectRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.daemon.review.Reject(r.Context(), id, req.ReviewedBy, req.Reason); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ReviewResponse{Message: "grant rejected"})
}

func (s *apiServer) handleMarkDuplicate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.MarkDuplicateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.daemon.review.MarkDuplicate(r.Context(), id, req.ProgramKey, req.ReviewedBy, req.Notes); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ReviewResponse{Message: "grant marked as duplicate of " + req.ProgramKey})
}

func (s *apiServer) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sent, message, err := s.daemon.TestNotification(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, message)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sent": sent, "message": message})
}

func grantQueryFromURL(r *http.Request) (api.GrantQuery, error) {
	values := r.URL.Query()
	query := api.GrantQuery{
		Status:       values.Get("status"),
		SourceType:   values.Get("source_type"),
		Jurisdiction: values.Get("jurisdiction"),
		Search:       values.Get("search"),
		Sort:         values.Get("sort"),
		Ascending:    values.Get("order") == "asc",
	}
	if raw := strings.TrimSpace(values.Get("min_confidence")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return api.GrantQuery{}, fmt.Errorf("invalid min_confidence %q", raw)
		}
		query.MinConfidence = &parsed
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return api.GrantQuery{}, fmt.Errorf("invalid limit %q", raw)
		}
		query.Limit = parsed
	}
	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return api.GrantQuery{}, fmt.Errorf("invalid offset %q", raw)
		}
		query.Offset = parsed
	}
	return query, nil
}

func overridesFromMap(values map[string]string) review.Overrides {
	return review.Overrides{
		Name:               values["name"],
		Jurisdiction:       values["jurisdiction"],
		ProgramType:        values["program_type"],
		MaxBenefit:         values["max_benefit"],
		Deadline:           values["deadline"],
		Agency:             values["agency"],
		Phone:              values["phone"],
		Email:              values["email"],
		Website:            values["website"],
		EligibilitySummary: values["eligibility_summary"],
	}
}

// decodeBody parses a JSON request body. An empty body leaves the target at
// its zero value.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(target)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	s.writeError(w, services.HTTPStatus(err), err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
