package domain

import "encoding/json"

// Selection is the filter state of a dashboard session.
// An empty dimension selects nothing; it never means "all".
type Selection struct {
	Platforms   []string `json:"platforms"`
	Products    []string `json:"products"`
	Influencers []string `json:"influencers"`
}

// FilterOptions lists the selectable values of each filter dimension
type FilterOptions struct {
	Platforms   []string `json:"platforms"`
	Products    []string `json:"products"`
	Influencers []string `json:"influencers"`
}

// Overview holds the campaign KPIs
type Overview struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalPayout  float64 `json:"total_payout"`
	ROAS         float64 `json:"roas"`
}

// OverviewDisplay holds the KPI values formatted for display
type OverviewDisplay struct {
	TotalRevenue string `json:"total_revenue"`
	TotalPayout  string `json:"total_payout"`
	ROAS         string `json:"roas"`
}

// PlatformRevenue is revenue summed for one source platform
type PlatformRevenue struct {
	Platform string  `json:"platform"`
	Revenue  float64 `json:"revenue"`
}

// InfluencerRevenue is revenue summed for one influencer name
type InfluencerRevenue struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// InfluencerROAS is one point of the ROAS distribution
type InfluencerROAS struct {
	InfluencerID int     `json:"influencer_id"`
	Name         string  `json:"name"`
	Followers    int     `json:"followers"`
	Revenue      float64 `json:"revenue"`
	TotalPayout  float64 `json:"total_payout"`
	ROAS         float64 `json:"roas"`
	// Defined is false when the payout was zero and ROAS was forced to 0
	Defined bool `json:"defined"`
}

// ROASSummary describes the spread of defined per-influencer ROAS values
type ROASSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Chart is a Chart.js configuration plus a rendered image URL
type Chart struct {
	Title    string          `json:"title"`
	Config   json.RawMessage `json:"config"`
	ImageURL string          `json:"image_url,omitempty"`
}

// OverviewView is the payload of the overview tab
type OverviewView struct {
	Overview          Overview          `json:"overview"`
	Display           OverviewDisplay   `json:"display"`
	RevenueByPlatform []PlatformRevenue `json:"revenue_by_platform"`
	FilteredRows      int               `json:"filtered_rows"`
	Chart             *Chart            `json:"chart,omitempty"`
}

// TopPerformersView is the payload of the top performers tab
type TopPerformersView struct {
	TopInfluencers   []InfluencerRevenue `json:"top_influencers"`
	ROAS             []InfluencerROAS    `json:"roas"`
	ROASSummary      ROASSummary         `json:"roas_summary"`
	TopChart         *Chart              `json:"top_chart,omitempty"`
	DistributionPlot *Chart              `json:"distribution_chart,omitempty"`
}
