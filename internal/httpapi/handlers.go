package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DeafMist/legal-radar/internal/alerts"
	"github.com/DeafMist/legal-radar/internal/metrics"
	"github.com/DeafMist/legal-radar/internal/serialize"
)

const summaryCacheKey = "summary"

func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	req := s.searchRequest(r)
	req.Place = ""
	docs, total, err := s.deps.News.List(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, serialize.News(d))
	}
	writeJSON(w, http.StatusOK, newListing(out, total, req))
}

func (s *Server) handleNewsGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	doc, err := s.deps.News.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.News(doc))
}

func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	req := s.searchRequest(r)
	req.Author = ""
	docs, total, err := s.deps.Reports.List(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, serialize.Report(d))
	}
	writeJSON(w, http.StatusOK, newListing(out, total, req))
}

func (s *Server) handleReportsGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	doc, err := s.deps.Reports.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.Report(doc))
}

func (s *Server) handleAlertsCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	n, err := s.deps.Alerts.Count(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (s *Server) handleAlertsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	list, err := s.deps.Alerts.List(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.Alerts(list))
}

func (s *Server) handleAlertsProcessed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	list, err := s.deps.Alerts.Processed(ctx, s.searchRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.Alerts(list))
}

func (s *Server) handleAlertDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	detail, err := s.deps.Alerts.Detail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.Detail(detail))
}

type actionRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleAlertAction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	var body actionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid body: %v", err)})
		return
	}

	action, err := alerts.ParseAction(body.Action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.deps.Alerts.Transition(ctx, chi.URLParam(r, "id"), action); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "action": string(action)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	sites, err := parseSites(r.URL.Query().Get("site"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := s.searchRequest(r)
	req.Sites = sites
	req.Offset = 0
	req.Author, req.Place, req.Tags = "", "", nil

	res, err := s.deps.Search.Search(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.Result(res))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	if s.deps.Cache != nil {
		cached, ok, err := s.deps.Cache.Get(ctx, summaryCacheKey)
		switch {
		case err != nil:
			s.log.Warn("summary cache read failed", slog.Any("err", err))
		case ok:
			metrics.SummaryCacheTotal.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
		metrics.SummaryCacheTotal.WithLabelValues("miss").Inc()
	}

	sum, err := s.deps.Search.Summary(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload, err := json.Marshal(serialize.Summary(sum))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, summaryCacheKey, payload); err != nil {
			s.log.Warn("summary cache write failed", slog.Any("err", err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
