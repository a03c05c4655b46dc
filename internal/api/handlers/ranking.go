package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethanwoods/stockrank/internal/contracts"
	"github.com/ethanwoods/stockrank/pkg/logger"
	"github.com/ethanwoods/stockrank/pkg/redis"
)

const rankingCacheTTL = 5 * time.Minute

// RankingHandler serves the ranked company and analyst lists. Responses are
// cached in redis when the cache is enabled; with it disabled the cache
// calls are no-ops.
type RankingHandler struct {
	companies contracts.CompanyRepository
	analysts  contracts.AnalystRepository
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewRankingHandler creates a ranking handler.
func NewRankingHandler(companies contracts.CompanyRepository, analysts contracts.AnalystRepository, cache *redis.Cache, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		companies: companies,
		analysts:  analysts,
		cache:     cache,
		logger:    log,
	}
}

type companyView struct {
	Ticker          string   `json:"ticker"`
	Name            string   `json:"name"`
	Sector          string   `json:"sector,omitempty"`
	Industry        string   `json:"industry,omitempty"`
	CurrentPrice    float64  `json:"current_price"`
	InvestmentScore *float64 `json:"investment_score"`
	TargetPrice     *float64 `json:"target_price,omitempty"`
}

type analystView struct {
	AnalystID       string   `json:"analyst_id"`
	Name            string   `json:"name"`
	Firm            string   `json:"firm"`
	ConfidenceScore *float64 `json:"confidence_score"`
	TotalRatings    int      `json:"total_ratings"`
	AccurateRatings int      `json:"accurate_ratings"`
}

// Companies returns companies ordered by investment score.
// GET /api/companies?limit=50
func (h *RankingHandler) Companies(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}

	cacheKey := "companies:" + strconv.Itoa(limit)
	var cached []companyView
	if hit, err := h.cache.Get(r.Context(), cacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	companies, err := h.companies.ListRanked(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list companies")
		respondError(w, http.StatusInternalServerError, "Failed to list companies")
		return
	}

	out := make([]companyView, 0, len(companies))
	for _, c := range companies {
		out = append(out, companyView{
			Ticker:          c.Ticker,
			Name:            c.Name,
			Sector:          c.Sector,
			Industry:        c.Industry,
			CurrentPrice:    c.CurrentPrice,
			InvestmentScore: c.InvestmentScore,
			TargetPrice:     c.TargetPrice,
		})
	}

	if err := h.cache.Set(r.Context(), cacheKey, out, rankingCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache company list")
	}
	respondJSON(w, http.StatusOK, out)
}

// Analysts returns analysts ordered by confidence score.
// GET /api/analysts?limit=50
func (h *RankingHandler) Analysts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}

	analysts, err := h.analysts.ListRanked(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list analysts")
		respondError(w, http.StatusInternalServerError, "Failed to list analysts")
		return
	}

	out := make([]analystView, 0, len(analysts))
	for _, a := range analysts {
		out = append(out, analystView{
			AnalystID:       a.AnalystID,
			Name:            a.Name,
			Firm:            a.Firm,
			ConfidenceScore: a.ConfidenceScore,
			TotalRatings:    a.TotalRatings,
			AccurateRatings: a.AccurateRatings,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}
