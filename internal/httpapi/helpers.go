package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DeafMist/legal-radar/internal/alerts"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// maxOffset matches the Elasticsearch result window.
const maxOffset = 10_000

var errUnknownSite = errors.New("unknown site")

type errorResponse struct {
	Error string `json:"error"`
}

type listingResponse struct {
	Documents []map[string]any `json:"documents"`
	TotalHits int64            `json:"totalHits"`
	Offset    int              `json:"offset"`
	Limit     int              `json:"limit"`
	HasMore   bool             `json:"hasMore"`
}

func newListing(docs []map[string]any, total int64, req query.SearchRequest) listingResponse {
	return listingResponse{
		Documents: docs,
		TotalHits: total,
		Offset:    req.Offset,
		Limit:     req.Limit,
		HasMore:   int64(req.Offset+len(docs)) < total,
	}
}

// writeError maps an error onto its status code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, alerts.ErrInvalidAction), errors.Is(err, errUnknownSite):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// searchRequest reads the filters shared by every listing.
func (s *Server) searchRequest(r *http.Request) query.SearchRequest {
	q := r.URL.Query()
	return query.SearchRequest{
		Query:     strings.TrimSpace(q.Get("query")),
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		Sort:      query.ParseSort(q.Get("sortBy")),
		Limit:     clampInt(q.Get("limit"), s.opts.DefaultPage, s.opts.MaxPage),
		Offset:    parseOffset(q.Get("offset")),
		Author:    strings.TrimSpace(q.Get("author")),
		Place:     strings.TrimSpace(q.Get("place")),
		Tags:      parseCSV(q.Get("tags")),
	}
}

func parseSites(raw string) ([]models.SourceType, error) {
	var out []models.SourceType
	for _, name := range parseCSV(raw) {
		source, ok := models.ParseSource(name)
		if !ok {
			return nil, errUnknownSite
		}
		out = append(out, source)
	}
	return out, nil
}

func parseOffset(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0
	}
	return min(value, maxOffset)
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
