package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"deepresearch/internal/format"
	"deepresearch/internal/research"
)

// researchRequest is the request body shared by all research endpoints.
type researchRequest struct {
	Query        string `json:"query"`
	MaxResults   int    `json:"max_results"`
	TimeFilter   string `json:"time_filter"`
	OutputFormat string `json:"output_format"`
	Title        string `json:"title"`
	IsProMode    bool   `json:"is_pro_mode"`
	MaxQuestions int    `json:"max_questions"`
}

func (s *Server) decodeRequest(r *http.Request) (*researchRequest, error) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	req.applyDefaults(s.cfg.DefaultFormat)
	if err := req.validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *researchRequest) applyDefaults(defaultFormat string) {
	if r.MaxResults == 0 {
		r.MaxResults = 10
	}
	if r.MaxQuestions == 0 {
		r.MaxQuestions = 4
	}
	if r.OutputFormat == "" {
		r.OutputFormat = defaultFormat
	}
}

func (r *researchRequest) validate() error {
	if len(r.Query) < 3 {
		return fmt.Errorf("query must be at least 3 characters")
	}
	if r.MaxResults < 1 || r.MaxResults > 50 {
		return fmt.Errorf("max_results must be between 1 and 50")
	}
	if r.MaxQuestions < 2 || r.MaxQuestions > 8 {
		return fmt.Errorf("max_questions must be between 2 and 8")
	}
	switch r.OutputFormat {
	case "text", "markdown", "html":
	default:
		return fmt.Errorf("invalid output format: %s", r.OutputFormat)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// proResponse is the JSON payload for a completed pro-mode run.
type proResponse struct {
	FinalReport   string               `json:"final_report"`
	SubReports    []research.SubReport `json:"sub_reports"`
	ResearchPlan  []string             `json:"research_plan"`
	FailedQueries int                  `json:"failed_queries"`
}

// handleResearch runs a research request to completion and returns the
// formatted report. Pro mode responds with the full JSON payload;
// standard mode responds with the formatted document and its MIME type.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	researchID := uuid.NewString()
	w.Header().Set("X-Research-ID", researchID)
	s.logger.Info("research_request_received",
		zap.String("research_id", researchID),
		zap.String("query", req.Query),
		zap.Int("max_results", req.MaxResults),
		zap.String("output_format", req.OutputFormat),
		zap.Bool("is_pro_mode", req.IsProMode))

	if req.IsProMode {
		result, err := s.pro(req.MaxQuestions).GenerateComprehensiveReport(r.Context(), req.Query, nil)
		if err != nil {
			s.logger.Error("research_failed", zap.String("research_id", researchID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, proResponse{
			FinalReport:   result.FinalReport,
			SubReports:    result.SubReports,
			ResearchPlan:  result.ResearchPlan,
			FailedQueries: result.FailedQueries,
		})
		return
	}

	report, err := s.standard.Research(r.Context(), req.Query, req.MaxResults, req.TimeFilter, nil)
	if err != nil {
		s.logger.Error("research_failed", zap.String("research_id", researchID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	out, err := format.Format(report.Content, report.Sources, req.OutputFormat, req.Title)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", out.MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.Content))
}

// progressEvent is one streamed progress update.
type progressEvent struct {
	Progress int    `json:"progress"`
	Phase    string `json:"phase"`
}

type runOutcome struct {
	result any
	err    error
}

// run executes the requested research mode, feeding progress into a
// channel that is closed when the run finishes.
func (s *Server) run(ctx context.Context, req *researchRequest, events chan<- progressEvent) runOutcome {
	onProgress := func(_ context.Context, phase string, percent int) {
		select {
		case events <- progressEvent{Progress: percent, Phase: phase}:
		case <-ctx.Done():
		}
	}

	if req.IsProMode {
		result, err := s.pro(req.MaxQuestions).GenerateComprehensiveReport(ctx, req.Query, onProgress)
		if err != nil {
			return runOutcome{err: err}
		}
		return runOutcome{result: proResponse{
			FinalReport:   result.FinalReport,
			SubReports:    result.SubReports,
			ResearchPlan:  result.ResearchPlan,
			FailedQueries: result.FailedQueries,
		}}
	}

	report, err := s.standard.Research(ctx, req.Query, req.MaxResults, req.TimeFilter, onProgress)
	if err != nil {
		return runOutcome{err: err}
	}
	return runOutcome{result: report}
}

// handleResearchStream streams progress as server-sent events, followed
// by a terminal result or error event.
func (s *Server) handleResearchStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	events := make(chan progressEvent, 16)
	done := make(chan runOutcome, 1)

	go func() {
		done <- s.run(ctx, req, events)
	}()

	writeEvent := func(v any) {
		payload, err := json.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	for {
		select {
		case ev := <-events:
			writeEvent(ev)
		case outcome := <-done:
			// Drain progress emitted before completion.
			for {
				select {
				case ev := <-events:
					writeEvent(ev)
					continue
				default:
				}
				break
			}
			if outcome.err != nil {
				s.logger.Error("streaming_research_failed", zap.Error(outcome.err))
				writeEvent(map[string]string{"error": outcome.err.Error()})
			} else {
				writeEvent(map[string]any{"result": outcome.result})
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the outgoing websocket message format.
type wsMessage struct {
	Type     string `json:"type"` // "progress", "result" or "error"
	Progress int    `json:"progress,omitempty"`
	Phase    string `json:"phase,omitempty"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleResearchWS upgrades to a websocket, reads one research request,
// and streams progress followed by the result.
func (s *Server) handleResearchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req researchRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: "invalid message format"})
		return
	}
	req.applyDefaults(s.cfg.DefaultFormat)
	if err := req.validate(); err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}

	ctx := r.Context()
	events := make(chan progressEvent, 16)
	done := make(chan runOutcome, 1)

	go func() {
		done <- s.run(ctx, &req, events)
	}()

	for {
		select {
		case ev := <-events:
			if err := conn.WriteJSON(wsMessage{Type: "progress", Progress: ev.Progress, Phase: ev.Phase}); err != nil {
				return
			}
		case outcome := <-done:
			for {
				select {
				case ev := <-events:
					_ = conn.WriteJSON(wsMessage{Type: "progress", Progress: ev.Progress, Phase: ev.Phase})
					continue
				default:
				}
				break
			}
			if outcome.err != nil {
				_ = conn.WriteJSON(wsMessage{Type: "error", Error: outcome.err.Error()})
			} else {
				_ = conn.WriteJSON(wsMessage{Type: "result", Result: outcome.result})
			}
			return
		case <-ctx.Done():
			return
		}
	}
}
