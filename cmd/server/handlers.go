package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/qpaper/qmapper/internal/analyze"
	"github.com/qpaper/qmapper/internal/export"
	"github.com/qpaper/qmapper/internal/match"
	"github.com/qpaper/qmapper/internal/platform/cache"
	"github.com/qpaper/qmapper/internal/platform/config"
	"github.com/qpaper/qmapper/internal/platform/database"
	"github.com/qpaper/qmapper/internal/question"
	"github.com/qpaper/qmapper/internal/syllabus"
)

const maxRequestBody = 10 << 20 // uploads arrive as extracted text, 10 MiB is generous

type server struct {
	cfg    *config.Config
	db     *database.DB
	cache  *cache.Cache
	store  analyze.RunStore
	runner *analyze.Runner
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /v1/runs", s.handleListRuns)
	mux.HandleFunc("GET /v1/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /v1/runs/{id}/export", s.handleExportRun)
	mux.HandleFunc("GET /v1/analyze/ws", s.handleAnalyzeWS)
	return mux
}

// analyzeRequest carries a question paper and its syllabus as plain text.
// Structured syllabus JSON (an array of subject records) takes precedence
// over free-form syllabus text when both are present.
type analyzeRequest struct {
	Syllabus     json.RawMessage `json:"syllabus,omitempty"`
	SyllabusText string          `json:"syllabus_text,omitempty"`
	PaperText    string          `json:"paper_text"`
	MaxQuestions int             `json:"max_questions,omitempty"`
}

type analyzeResponse struct {
	RunID   string         `json:"run_id"`
	Results []match.Result `json:"results"`
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("database: %w", err))
			return
		}
	}
	if s.cache != nil {
		if err := s.cache.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("cache: %w", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	catalog, units, err := s.prepare(req)
	if err != nil {
		writeError(w, statusForPrepareError(err), err)
		return
	}

	results, err := s.runner.Run(r.Context(), catalog, units, nil)
	if err != nil {
		writeError(w, statusForRunError(err), err)
		return
	}

	id, err := s.store.CreateRun(r.Context(), results)
	if err != nil {
		slog.Error("failed to persist run", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("persisting run: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{RunID: id, Results: results})
}

func (s *server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []analyze.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		var err error
		format, err = export.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "analysis_"+run.ID+"."+string(format)))
	if err := export.Write(w, format, run.Results); err != nil {
		slog.Error("export failed", "run_id", run.ID, "format", format, "error", err)
	}
}

// wsFrame is one message on the streaming analyze socket. type is "result"
// for each completed question and "done" once the run is stored.
type wsFrame struct {
	Type   string        `json:"type"`
	Done   int           `json:"done,omitempty"`
	Total  int           `json:"total,omitempty"`
	Result *match.Result `json:"result,omitempty"`
	RunID  string        `json:"run_id,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// handleAnalyzeWS streams results as they are produced: the client sends one
// analyzeRequest JSON message, the server replies with a "result" frame per
// question and a final "done" frame carrying the stored run ID.
func (s *server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	var req analyzeRequest
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = wsjson.Read(readCtx, conn, &req)
	cancel()
	if err != nil {
		conn.Close(websocket.StatusInvalidFramePayloadData, "expected analyze request")
		return
	}

	catalog, units, err := s.prepare(req)
	if err != nil {
		wsjson.Write(ctx, conn, wsFrame{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	progress := func(done, total int, res match.Result) {
		frame := wsFrame{Type: "result", Done: done, Total: total, Result: &res}
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			slog.Debug("websocket write failed", "error", err)
		}
	}

	results, err := s.runner.Run(ctx, catalog, units, progress)
	if err != nil {
		wsjson.Write(ctx, conn, wsFrame{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	id, err := s.store.CreateRun(ctx, results)
	if err != nil {
		slog.Error("failed to persist run", "error", err)
		wsjson.Write(ctx, conn, wsFrame{Type: "error", Error: "persisting run failed"})
		conn.Close(websocket.StatusInternalError, "")
		return
	}

	wsjson.Write(ctx, conn, wsFrame{Type: "done", Total: len(results), RunID: id})
	conn.Close(websocket.StatusNormalClosure, "")
}

// prepare builds the catalog and question units from a request.
func (s *server) prepare(req analyzeRequest) (syllabus.Catalog, []question.Unit, error) {
	var catalog syllabus.Catalog
	var err error
	switch {
	case len(req.Syllabus) > 0:
		catalog, err = syllabus.ParseStructuredJSON(req.Syllabus)
		if err != nil {
			return nil, nil, err
		}
	case req.SyllabusText != "":
		catalog = syllabus.ParseText(req.SyllabusText)
	default:
		return nil, nil, fmt.Errorf("request needs syllabus or syllabus_text")
	}
	if len(catalog) == 0 {
		return nil, nil, analyze.ErrEmptyCatalog
	}

	if req.PaperText == "" {
		return nil, nil, fmt.Errorf("request needs paper_text")
	}

	max := s.cfg.Analyze.MaxQuestions
	if req.MaxQuestions > 0 && req.MaxQuestions < max {
		max = req.MaxQuestions
	}
	units := question.Split(req.PaperText, max)
	if len(units) == 0 {
		units = question.FallbackLines(req.PaperText, max)
	}
	if len(units) == 0 {
		return nil, nil, analyze.ErrNoQuestionsFound
	}

	return catalog, units, nil
}

func statusForPrepareError(err error) int {
	if errors.Is(err, syllabus.ErrInvalidFormat) ||
		errors.Is(err, analyze.ErrEmptyCatalog) ||
		errors.Is(err, analyze.ErrNoQuestionsFound) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func statusForRunError(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout
	}
	return http.StatusUnprocessableEntity
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response write failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
