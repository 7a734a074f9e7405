// Package charts describes the dashboard charts as Chart.js configurations
// and renders image URLs for them through QuickChart.
package charts

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	quickchartgo "github.com/henomis/quickchart-go"

	"influencerdash/pkg/contracts/domain"
)

// maxBubbleRadius bounds the largest follower bubble
const maxBubbleRadius = 30.0

var ErrEmptyConfig = errors.New("chart config is empty")

// ChartConfig is the subset of a Chart.js configuration the dashboard uses
type ChartConfig struct {
	Type    string                 `json:"type"`
	Data    ChartData              `json:"data"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []interface{} `json:"labels,omitempty"`
	DataSets []Dataset     `json:"datasets"`
}

type Dataset struct {
	Label string        `json:"label"`
	Data  []interface{} `json:"data"`
}

// BubblePoint is one point of a bubble dataset
type BubblePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Renderer turns chart configurations into domain charts
type Renderer struct {
	// RenderImages controls whether an image URL is attached
	RenderImages bool
}

// NewRenderer creates a chart renderer
func NewRenderer(renderImages bool) *Renderer {
	return &Renderer{RenderImages: renderImages}
}

// Render marshals the configuration and attaches an image URL when enabled
func (r *Renderer) Render(title string, cfg ChartConfig) (*domain.Chart, error) {
	if cfg.Options == nil {
		cfg.Options = map[string]interface{}{}
	}
	cfg.Options["title"] = map[string]interface{}{"display": true, "text": title}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart config: %w", err)
	}

	chart := &domain.Chart{Title: title, Config: raw}
	if r.RenderImages {
		url, err := ImageURL(raw)
		if err != nil {
			return nil, err
		}
		chart.ImageURL = url
	}
	return chart, nil
}

// ImageURL builds the QuickChart URL for a marshaled configuration
func ImageURL(config []byte) (string, error) {
	if len(config) == 0 {
		return "", ErrEmptyConfig
	}
	qc := quickchartgo.New()
	qc.Config = string(config)
	url, err := qc.GetUrl()
	if err != nil {
		return "", fmt.Errorf("failed to get chart url from quickchart: %w", err)
	}
	return url, nil
}

// RevenueByPlatform is a bar chart with one bar per platform
func (r *Renderer) RevenueByPlatform(rows []domain.PlatformRevenue) (*domain.Chart, error) {
	labels := make([]interface{}, len(rows))
	data := make([]interface{}, len(rows))
	for i, row := range rows {
		labels[i] = row.Platform
		data[i] = row.Revenue
	}

	return r.Render("Revenue by Platform", ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels:   labels,
			DataSets: []Dataset{{Label: "Revenue", Data: data}},
		},
	})
}

// TopInfluencers is a horizontal bar chart, highest revenue on top
func (r *Renderer) TopInfluencers(rows []domain.InfluencerRevenue) (*domain.Chart, error) {
	labels := make([]interface{}, len(rows))
	data := make([]interface{}, len(rows))
	for i, row := range rows {
		labels[i] = row.Name
		data[i] = row.Revenue
	}

	return r.Render(fmt.Sprintf("Top %d Influencers by Revenue", len(rows)), ChartConfig{
		Type: "horizontalBar",
		Data: ChartData{
			Labels:   labels,
			DataSets: []Dataset{{Label: "Revenue", Data: data}},
		},
	})
}

// ROASDistribution is a bubble chart per influencer: revenue on x, ROAS on y
// and radius scaled by followers. Influencers with an undefined ROAS are omitted.
func (r *Renderer) ROASDistribution(rows []domain.InfluencerROAS) (*domain.Chart, error) {
	maxFollowers := 0
	for _, row := range rows {
		if row.Followers > maxFollowers {
			maxFollowers = row.Followers
		}
	}

	datasets := make([]Dataset, 0, len(rows))
	for _, row := range rows {
		if !row.Defined {
			continue
		}
		datasets = append(datasets, Dataset{
			Label: row.Name,
			Data: []interface{}{BubblePoint{
				X: row.Revenue,
				Y: math.Round(row.ROAS*100) / 100,
				R: BubbleRadius(row.Followers, maxFollowers),
			}},
		})
	}

	return r.Render("Influencer ROAS Distribution", ChartConfig{
		Type: "bubble",
		Data: ChartData{DataSets: datasets},
		Options: map[string]interface{}{
			"scales": map[string]interface{}{
				"xAxes": []interface{}{map[string]interface{}{"scaleLabel": map[string]interface{}{"display": true, "labelString": "Revenue"}}},
				"yAxes": []interface{}{map[string]interface{}{"scaleLabel": map[string]interface{}{"display": true, "labelString": "ROAS"}}},
			},
		},
	})
}

// BubbleRadius scales bubble area with followers
func BubbleRadius(followers, maxFollowers int) float64 {
	if maxFollowers <= 0 || followers <= 0 {
		return 2
	}
	r := maxBubbleRadius * math.Sqrt(float64(followers)/float64(maxFollowers))
	return math.Max(2, math.Round(r*10)/10)
}
