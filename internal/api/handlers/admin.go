package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/internal/ingest"
	"github.com/ethanwoods/stockrank/internal/jobtrack"
	"github.com/ethanwoods/stockrank/internal/ranking"
	"github.com/ethanwoods/stockrank/pkg/config"
	"github.com/ethanwoods/stockrank/pkg/logger"
)

// AdminHandler exposes the pipeline trigger and job status endpoints.
type AdminHandler struct {
	orchestrator *ingest.Orchestrator
	engine       *ranking.Engine
	tracker      *jobtrack.Tracker
	config       *config.Config
	logger       *logger.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(o *ingest.Orchestrator, e *ranking.Engine, tracker *jobtrack.Tracker, cfg *config.Config, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		orchestrator: o,
		engine:       e,
		tracker:      tracker,
		config:       cfg,
		logger:       log,
	}
}

// IngestRequest tunes one ingestion run. Zero values fall back to the
// configured defaults.
type IngestRequest struct {
	PriceYears     int `json:"price_years"`
	LimitCompanies int `json:"limit_companies"`
}

// Ingest runs the full ingestion pipeline synchronously.
// POST /api/admin/ingest
func (h *AdminHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.PriceYears <= 0 {
		req.PriceYears = h.config.Ingestion.PriceYears
	}

	var stats *contracts.IngestionStats
	err := h.tracker.Run(r.Context(), "full_ingestion", func(ctx context.Context) (string, error) {
		var err error
		stats, err = h.orchestrator.RunFullIngestion(ctx, req.PriceYears, req.LimitCompanies)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("companies=%d prices=%d ratings=%d", stats.Companies, stats.Prices, stats.Ratings), nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Ingestion run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Rank runs the full ranking pipeline synchronously.
// POST /api/admin/rank
func (h *AdminHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var stats *contracts.RankingStats
	err := h.tracker.Run(r.Context(), "full_ranking", func(ctx context.Context) (string, error) {
		var err error
		stats, err = h.engine.RunFullRanking(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("analysts_ranked=%d companies_ranked=%d", stats.AnalystsRanked, stats.CompaniesRanked), nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Ranking run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Jobs lists recent pipeline runs, newest first.
// GET /api/admin/jobs?limit=50
func (h *AdminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := h.tracker.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list jobs")
		respondError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, newJobView(j))
	}
	respondJSON(w, http.StatusOK, out)
}

type jobView struct {
	ID        int64   `json:"id"`
	JobType   string  `json:"job_type"`
	Status    string  `json:"status"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time,omitempty"`
	Detail    string  `json:"detail,omitempty"`
}

func newJobView(j contracts.JobRecord) jobView {
	v := jobView{
		ID:        j.ID,
		JobType:   j.JobType,
		Status:    string(j.Status),
		StartTime: j.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Detail:    j.Detail,
	}
	if j.EndTime != nil {
		s := j.EndTime.UTC().Format("2006-01-02T15:04:05Z")
		v.EndTime = &s
	}
	return v
}
