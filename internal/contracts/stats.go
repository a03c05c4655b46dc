package contracts

// IngestionStats is the flat summary returned by a full ingestion run.
type IngestionStats struct {
	Companies     int `json:"companies"`
	Prices        int `json:"prices"`
	CurrentPrices int `json:"current_prices"`
	Ratings       int `json:"ratings"`
	Analysts      int `json:"analysts"`
}

// RankingStats is the flat summary returned by a full ranking run.
type RankingStats struct {
	AnalystsRanked  int `json:"analysts_ranked"`
	CompaniesRanked int `json:"companies_ranked"`
}
