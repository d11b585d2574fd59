package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/parser"
)

// maxBatch bounds the statements accepted by one batch request.
const maxBatch = 256

type analyzeRequest struct {
	Query  string `json:"query"`
	Strict bool   `json:"strict"`
}

type batchRequest struct {
	Queries []string `json:"queries"`
	Strict  bool     `json:"strict"`
}

type batchItem struct {
	Result *core.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Unresolved []string `json:"unresolved,omitempty"`
}

type columnJSON struct {
	Name string    `json:"name"`
	Type core.Type `json:"type"`
}

type tableJSON struct {
	Name    string       `json:"name"`
	Columns []columnJSON `json:"columns"`
}

type schemaResponse struct {
	Fingerprint string      `json:"fingerprint"`
	Tables      []tableJSON `json:"tables"`
}

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/batch", s.handleBatch)
		r.Get("/schema", s.handleSchema)
		r.Get("/events", s.handleEvents)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req.Query, s.Schema())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if req.Strict {
		if err := res.Validate(); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Unresolved: res.Unresolved()})
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// handleBatch analyzes several statements against one schema snapshot.
// Per-statement failures are reported inline; the request itself succeeds.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Queries) > maxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("batch of %d exceeds limit of %d", len(req.Queries), maxBatch))
		return
	}

	sc := s.Schema()
	items := make([]batchItem, len(req.Queries))
	for i, q := range req.Queries {
		res, err := s.analyzer.Analyze(r.Context(), q, sc)
		if err == nil && req.Strict {
			err = res.Validate()
		}
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		items[i].Result = res
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	sc := s.Schema()
	resp := schemaResponse{Fingerprint: sc.FingerprintHex()}
	for _, t := range sc.Tables() {
		tj := tableJSON{Name: t.Name, Columns: make([]columnJSON, 0, len(t.Columns))}
		for _, c := range t.Columns {
			tj.Columns = append(tj.Columns, columnJSON{Name: c.Name, Type: c.Type})
		}
		resp.Tables = append(resp.Tables, tj)
	}
	writeJSON(w, http.StatusOK, resp)
}

// schemaEvent is the SSE event type carrying a schema fingerprint.
const schemaEvent datastar.EventType = "schema"

// handleEvents streams the current schema fingerprint, then a "schema"
// event after every reload.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	sse := datastar.NewSSE(w, r)
	if err := sse.Send(schemaEvent, []string{s.Schema().FingerprintHex()}); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case fp := <-ch:
			if err := sse.Send(schemaEvent, []string{fp}); err != nil {
				s.logger.Debug("event stream closed", "error", err)
				return
			}
		}
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("run history is disabled"))
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("run history is disabled"))
		return
	}

	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// statusFor maps analysis errors to HTTP statuses. Malformed statements
// are the client's fault; anything else is ours.
func statusFor(err error) int {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
