package models

// AnalyticsSummary is the aggregate view over the lead store.
type AnalyticsSummary struct {
	TotalLeads     int64   `json:"total_leads"`
	AverageScore   float64 `json:"average_score"`
	LeadsThisMonth int64   `json:"leads_this_month"`
}

// TimelinePoint is one day's submission count.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
