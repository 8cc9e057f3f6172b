package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/briankw/theo/internal/memory"
	"github.com/briankw/theo/pkg/api"
)

// MemoryHandler handles memory inspection and maintenance endpoints.
type MemoryHandler struct {
	TurnLog      *memory.TurnLog
	Store        *memory.SummaryStore
	Consolidator *memory.Consolidator
}

// Summaries handles GET /v1/memory/summaries?date=YYYY-MM-DD.
func (h *MemoryHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	sums, err := h.Store.ByDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}

	records := make([]api.SummaryRecord, len(sums))
	for i, s := range sums {
		records[i] = api.SummaryRecord{
			ID:      s.ID,
			Date:    s.Date,
			Topic:   s.Topic,
			Summary: s.Text,
		}
	}
	writeJSON(w, api.SummariesResponse{Date: date, Summaries: records})
}

// Turns handles GET /v1/memory/turns?date=YYYY-MM-DD.
func (h *MemoryHandler) Turns(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	turns, err := h.TurnLog.Restore(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
		return
	}

	records := make([]api.TurnRecord, len(turns))
	for i, t := range turns {
		records[i] = api.TurnRecord{Date: t.Date, Role: t.Role, Content: t.Content}
	}
	writeJSON(w, api.TurnsResponse{Date: date, Turns: records})
}

// Consolidate handles POST /v1/memory/consolidate. An empty or absent date
// consolidates yesterday; an explicit date forces a rebuild for that day.
func (h *MemoryHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	var req api.ConsolidateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	date := req.Date
	if date == "" {
		date = memory.Yesterday(time.Now())
		if err := h.Consolidator.BuildMemory(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
			return
		}
	} else {
		if _, err := time.Parse(memory.DateLayout, date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		if err := h.Consolidator.BuildMemoryFor(r.Context(), date); err != nil {
			writeError(w, http.StatusInternalServerError, "memory_error", err.Error())
			return
		}
	}

	writeJSON(w, api.ConsolidateResponse{Status: "consolidated", Date: date})
}

func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "date query parameter is required")
		return "", false
	}
	if _, err := time.Parse(memory.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}
