package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in every dataset file.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD value
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", string(data), err)
	}
	*d = parsed
	return nil
}

// Influencer is one row of influencers.csv
type Influencer struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Gender    string `json:"gender"`
	Followers int    `json:"followers"`
	Platform  string `json:"platform"`
}

// Post is one row of posts.csv
type Post struct {
	InfluencerID int    `json:"influencer_id"`
	Platform     string `json:"platform"`
	Date         Date   `json:"date"`
	URL          string `json:"url"`
	Caption      string `json:"caption"`
	Reach        int    `json:"reach"`
	Likes        int    `json:"likes"`
	Comments     int    `json:"comments"`
}

// TrackingRecord is one attributed purchase event from tracking_data.csv
type TrackingRecord struct {
	Source       string  `json:"source"`
	Campaign     string  `json:"campaign"`
	InfluencerID int     `json:"influencer_id"`
	UserID       int     `json:"user_id"`
	Product      string  `json:"product"`
	Date         Date    `json:"date"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
}

// PayoutBasis selects what a payout rate is multiplied by
type PayoutBasis string

const (
	PayoutBasisPost  PayoutBasis = "post"
	PayoutBasisOrder PayoutBasis = "order"
)

// Valid reports whether the basis is one of the known values
func (b PayoutBasis) Valid() bool {
	return b == PayoutBasisPost || b == PayoutBasisOrder
}

// Payout is the per-influencer payout row from payouts.csv
type Payout struct {
	InfluencerID int         `json:"influencer_id"`
	Basis        PayoutBasis `json:"basis"`
	Rate         float64     `json:"rate"`
	Orders       int         `json:"orders"`
	TotalPayout  float64     `json:"total_payout"`
}

// Platforms the generator assigns to influencers
var Platforms = []string{"Instagram", "YouTube", "Twitter", "Facebook"}
