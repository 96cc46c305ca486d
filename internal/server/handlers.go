package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

const noData = "no data for this selection"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.engine == nil || s.engine.Table().Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no snapshot loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"snapshot": s.snapshot.String(),
		"metros":   s.engine.Table().Len(),
	})
}

func (s *Server) handleGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GroupSizes())
}

func (s *Server) handleGroupSummary(w http.ResponseWriter, r *http.Request) {
	group := pathParam(r, "group")
	metrics, err := s.engine.Catalog().Pillar(r.URL.Query().Get("pillar"))
	if err != nil {
		s.fail(w, err)
		return
	}
	out, err := s.engine.GroupSummaries(group, metrics)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGroupReport(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", 5)
	if err != nil {
		s.fail(w, err)
		return
	}
	rep, err := s.engine.GroupReport(pathParam(r, "group"), r.URL.Query().Get("pillar"), n)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := intParam(r, "n", 5)
	if err != nil {
		s.fail(w, err)
		return
	}
	order, err := analysis.ParseOrder(q.Get("order"))
	if err != nil {
		s.fail(w, err)
		return
	}
	out, err := s.engine.Rank(pathParam(r, "group"), q.Get("metric"), n, order)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCombinations(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.Combinations(pathParam(r, "group"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSummary returns one summary record when group and metric are given,
// otherwise the whole summary table.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	group, metric := q.Get("group"), q.Get("metric")
	if group == "" && metric == "" {
		writeJSON(w, http.StatusOK, s.engine.Summaries())
		return
	}
	if group == "" || metric == "" {
		s.reject(w, http.StatusBadRequest, "bad_request", "both group and metric are required")
		return
	}
	if _, ok := s.engine.Catalog().GroupCode(group); !ok {
		s.fail(w, fmt.Errorf("%w: %q", analysis.ErrUnknownGroup, group))
		return
	}
	if !s.engine.Catalog().IsTracked(metric) {
		s.fail(w, fmt.Errorf("%w: %q", analysis.ErrUnknownMetric, metric))
		return
	}
	sum, ok := s.engine.Summary(group, metric)
	if !ok {
		s.reject(w, http.StatusNotFound, "not_found", noData)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleTotals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Totals())
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	metric := pathParam(r, "metric")
	if !s.engine.Catalog().IsTracked(metric) {
		s.fail(w, fmt.Errorf("%w: %q", analysis.ErrUnknownMetric, metric))
		return
	}
	total, ok := s.engine.Total(metric)
	if !ok {
		s.reject(w, http.StatusNotFound, "not_found", fmt.Sprintf("%s is rate-like and has no global total", metric))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Metric string      `json:"metric"`
		Total  metro.Value `json:"total"`
	}{metric, total})
}

// handleCompare compares the selected groups on one metric, or on every
// metric of a pillar when no metric is given.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groups := q["group"]
	if metric := q.Get("metric"); metric != "" {
		c, err := s.engine.Compare(groups, metric)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
		return
	}
	out, err := s.engine.CompareTable(groups, q.Get("pillar"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMetro(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.Lookup(pathParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// fail maps engine errors to status codes and counts the rejection.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptySelection):
		s.reject(w, http.StatusBadRequest, "empty_selection", err.Error()+": select at least one group")
	case errors.Is(err, analysis.ErrUnknownGroup):
		s.reject(w, http.StatusNotFound, "unknown_group", err.Error())
	case errors.Is(err, analysis.ErrUnknownMetric):
		s.reject(w, http.StatusNotFound, "unknown_metric", err.Error())
	case errors.Is(err, analysis.ErrMetroNotFound):
		s.reject(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.reject(w, http.StatusBadRequest, "bad_request", err.Error())
	}
}

func (s *Server) reject(w http.ResponseWriter, status int, reason, msg string) {
	s.metrics.RejectedQueries.WithLabelValues(reason).Inc()
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func intParam(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
