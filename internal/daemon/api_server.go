package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"writegeist/internal/api"
	"writegeist/internal/config"
	"writegeist/internal/logging"
	"writegeist/internal/project"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/echo", srv.handleEcho)
	mux.HandleFunc("/ingest_chapter", srv.handleIngestChapter)
	mux.HandleFunc("/project/section/", srv.handleSection)
	mux.HandleFunc("/project/sections", srv.handleSections)
	mux.HandleFunc("/n8n/proposal", srv.handleProposal)
	mux.HandleFunc("/upload-project", srv.handleUploadProject)
	mux.HandleFunc("/download-db", srv.handleDownloadDB)
	mux.HandleFunc("/last-updated", srv.handleLastUpdated)
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           srv.requestID(srv.cors(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
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
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// requestID tags every request with a correlation id for the logs.
func (s *apiServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			logging.String(logging.FieldRequestID, id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(started)))
	})
}

// cors mirrors the permissive policy of the desktop app's service: it is
// called from file:// origins and local webhook runners.
func (s *apiServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) handleEcho(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.EchoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.writeJSON(w, http.StatusOK, api.EchoResponse{Echo: req.Text})
}

func (s *apiServer) handleIngestChapter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.IngestChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.daemon.pipeline.Available() {
		s.writeError(w, http.StatusNotImplemented, "No API key")
		return
	}

	result, err := s.daemon.pipeline.Run(r.Context(), req.Title, req.Text)
	if err != nil {
		s.notifyError(r.Context(), err, "chapter ingestion")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Chapter ingestion failed: %v", err))
		return
	}
	if err := s.daemon.notifier.NotifyChapterIngested(r.Context(), result.Title, len(result.Characters), len(result.Locations)); err != nil {
		s.logger.Warn("ingest notification failed", logging.Error(err))
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleSection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/project/section/")
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" || strings.Contains(name, "/") {
		s.writeError(w, http.StatusNotFound, "section name required")
		return
	}
	content, err := s.daemon.svc.Section(r.Context(), name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load project section: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.SectionResponse{Markdown: content})
}

func (s *apiServer) handleSections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	infos, err := s.daemon.svc.Sections(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sections := make([]api.SectionSummary, 0, len(infos))
	for _, info := range infos {
		sections = append(sections, api.SectionSummary{Name: info.Name, Lines: info.Lines})
	}
	s.writeJSON(w, http.StatusOK, api.SectionsResponse{Sections: sections})
}

func (s *apiServer) handleProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Section) == "" {
		s.writeError(w, http.StatusBadRequest, "section is required")
		return
	}

	result, err := s.daemon.svc.ApplyProposal(r.Context(), req.Section, req.Replace)
	if err != nil {
		s.notifyError(r.Context(), err, "proposal")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process patch: %v", err))
		return
	}

	status := "applied"
	if result.Rejected() {
		status = "rejected"
	} else if err := s.daemon.notifier.NotifyPatchApplied(r.Context(), result.Section, string(result.Outcome)); err != nil {
		s.logger.Warn("proposal notification failed", logging.Error(err))
	}
	s.writeJSON(w, http.StatusAccepted, api.ProposalResponse{
		Status:  status,
		Section: result.Section,
		Result:  api.FromMergeResult(result),
	})
}

func (s *apiServer) handleUploadProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.daemon.svc.Upload(r.Context(), req.Markdown); err != nil {
		if errors.Is(err, project.ErrEmptyUpload) {
			s.writeError(w, http.StatusBadRequest, "No markdown content provided")
			return
		}
		s.notifyError(r.Context(), err, "project upload")
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to upload project content: %v", err))
		return
	}
	if err := s.daemon.notifier.NotifyProjectUploaded(r.Context(), len(req.Markdown)); err != nil {
		s.logger.Warn("upload notification failed", logging.Error(err))
	}
	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Status:        "success",
		Message:       "Project content uploaded successfully",
		ContentLength: len(req.Markdown),
	})
}

func (s *apiServer) handleDownloadDB(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path := s.daemon.svc.DatabasePath()
	if _, err := os.Stat(path); err != nil {
		s.writeError(w, http.StatusNotFound, "Database file not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="writegeist.db"`)
	http.ServeFile(w, r, path)
}

func (s *apiServer) handleLastUpdated(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.LastUpdatedResponse{
		LastUpdated: strconv.FormatInt(s.daemon.svc.LastUpdated(), 10),
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{OK: true})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) notifyError(ctx context.Context, err error, label string) {
	if notifyErr := s.daemon.notifier.NotifyError(ctx, err, label); notifyErr != nil {
		s.logger.Warn("error notification failed", logging.Error(notifyErr))
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
