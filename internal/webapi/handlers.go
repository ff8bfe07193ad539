package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/reporting"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/series"
	"github.com/selarassehat/rula/internal/validation"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// maxBodyBytes bounds override documents posted to the API.
const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store RunStore
}

// NewHandlers creates a new Handlers with the given store.
func NewHandlers(store RunStore) *Handlers {
	return &Handlers{store: store}
}

// requestLanguage picks the response language from ?lang= or the
// Accept-Language header.
func requestLanguage(r *http.Request) language.Tag {
	var prefs []string
	if l := r.URL.Query().Get("lang"); l != "" {
		prefs = append(prefs, l)
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		prefs = append(prefs, h)
	}
	return risk.MatchLanguage(prefs...)
}

func runSummary(run *export.Run, tag language.Tag) RunSummary {
	rs := RunSummary{
		ID:        run.ID,
		Source:    run.Source,
		CreatedAt: run.CreatedAt,
		Adjusted:  run.Adjusted != nil,
	}
	sum, err := run.Series.Summary()
	if err != nil {
		rs.RiskLabel = risk.NoPoseMessage(tag)
		return rs
	}
	rs.Frames = sum.Frames
	rs.Mean = sum.Mean
	rs.Max = sum.Max
	rs.Min = sum.Min
	rs.Risk = int(sum.Risk)
	rs.RiskLabel = risk.Label(sum.Risk, tag)
	return rs
}

func runDetail(run *export.Run, tag language.Tag) *RunDetail {
	d := &RunDetail{
		RunSummary: runSummary(run, tag),
		FrameRate:  run.FrameRate,
		Dropped:    run.Series.Dropped,
		Timeline:   run.Series.Frames,
		Adjustment: run.Adjusted,
	}
	if sum, err := run.Series.Summary(); err == nil {
		d.StdDev = sum.StdDev
	}
	if d.Timeline == nil {
		d.Timeline = []rula.FrameResult{}
	}
	return d
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleSummary returns aggregate metrics across all runs.
func (h *Handlers) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	runs, err := h.store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := SummaryResponse{RiskCounts: map[int]int{}}
	var scored int
	var total float64
	for _, run := range runs {
		resp.TotalRuns++
		sum, err := run.Series.Summary()
		if err != nil {
			continue
		}
		scored++
		resp.TotalFrames += sum.Frames
		total += sum.Mean
		resp.RiskCounts[int(sum.Risk)]++
	}
	if scored > 0 {
		resp.AvgScore = total / float64(scored)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRuns returns a list of all runs, with optional sort/order query params.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tag := requestLanguage(r)
	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, runSummary(run, tag))
	}
	sortRuns(out, r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	writeJSON(w, http.StatusOK, out)
}

// lookupRun resolves the {id} path value, writing the error response itself
// when the run cannot be found.
func (h *Handlers) lookupRun(w http.ResponseWriter, r *http.Request) (*export.Run, bool) {
	id := r.PathValue("id")
	if id == "" {
		// Fallback: extract from URL path for compatibility.
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
		if len(parts) > 0 {
			id = parts[0]
		}
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return nil, false
	}

	run, err := h.store.GetRun(id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return run, true
}

// HandleRunDetail returns a run with its per-frame timeline.
func (h *Handlers) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, runDetail(run, requestLanguage(r)))
}

// HandleSuggestedOverrides returns the majority-vote override set of a run.
func (h *Handlers) HandleSuggestedOverrides(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, series.SuggestOverrides(run.Series))
}

// HandleRecalculate rescores a run under the posted overrides document.
// With ?save=true the adjustment is stored with the run.
func (h *Handlers) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	overrides, err := validation.ParseOverrides(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	adj, err := series.Recalculate(run.Series, overrides)
	if err != nil {
		if errors.Is(err, series.ErrNoPoseDetected) {
			writeError(w, http.StatusUnprocessableEntity, risk.NoPoseMessage(requestLanguage(r)))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	original, _ := run.Series.Summary()

	resp := RecalculateResponse{
		RunID:     run.ID,
		Original:  original,
		Adjusted:  adj,
		RiskLabel: risk.Label(adj.Summary.Risk, requestLanguage(r)),
	}
	if r.URL.Query().Get("save") == "true" {
		if err := h.store.SaveAdjustment(run.ID, adj); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Saved = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCSV streams the frame table of a run, including the stored
// adjustment when present.
func (h *Handlers) HandleCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ID+".csv"))
	export.WriteCSV(w, run.Series, run.Adjusted) //nolint:errcheck
}

// HandleReport renders the HTML report of a run.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	reporting.WriteHTML(w, run, requestLanguage(r)) //nolint:errcheck
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store RunStore) {
	h := NewHandlers(store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/runs", h.HandleRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.HandleRunDetail)
	mux.HandleFunc("GET /api/runs/{id}/suggested-overrides", h.HandleSuggestedOverrides)
	mux.HandleFunc("POST /api/runs/{id}/recalculate", h.HandleRecalculate)
	mux.HandleFunc("GET /api/runs/{id}/csv", h.HandleCSV)
	mux.HandleFunc("GET /api/runs/{id}/report", h.HandleReport)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sortRuns(runs []RunSummary, field, order string) {
	less := func(i, j int) bool {
		switch field {
		case "mean":
			return runs[i].Mean < runs[j].Mean
		case "max":
			return runs[i].Max < runs[j].Max
		case "frames":
			return runs[i].Frames < runs[j].Frames
		default: // "created" or empty
			return runs[i].CreatedAt.Before(runs[j].CreatedAt)
		}
	}

	if order == "asc" {
		sort.SliceStable(runs, less)
	} else {
		sort.SliceStable(runs, func(i, j int) bool { return less(j, i) })
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
