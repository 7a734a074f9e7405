package domain

import "fmt"

// Entity identifies one of the four dataset tables
type Entity string

const (
	EntityInfluencers Entity = "influencers"
	EntityPosts       Entity = "posts"
	EntityTracking    Entity = "tracking"
	EntityPayouts     Entity = "payouts"
)

// Entities lists every table in load order
var Entities = []Entity{EntityInfluencers, EntityPosts, EntityTracking, EntityPayouts}

var entityFiles = map[Entity]string{
	EntityInfluencers: "influencers.csv",
	EntityPosts:       "posts.csv",
	EntityTracking:    "tracking_data.csv",
	EntityPayouts:     "payouts.csv",
}

var entityColumns = map[Entity][]string{
	EntityInfluencers: {"id", "name", "category", "gender", "followers", "platform"},
	EntityPosts:       {"influencer_id", "platform", "date", "url", "caption", "reach", "likes", "comments"},
	EntityTracking:    {"source", "campaign", "influencer_id", "user_id", "product", "date", "orders", "revenue"},
	EntityPayouts:     {"influencer_id", "basis", "rate", "orders", "total_payout"},
}

// ParseEntity converts a role name into an Entity
func ParseEntity(name string) (Entity, error) {
	e := Entity(name)
	if _, ok := entityFiles[e]; !ok {
		return "", fmt.Errorf("unknown entity %q", name)
	}
	return e, nil
}

// FileName returns the canonical CSV file name for the entity
func (e Entity) FileName() string {
	return entityFiles[e]
}

// Columns returns the header columns of the entity in file order
func (e Entity) Columns() []string {
	cols := entityColumns[e]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Tables holds the four dataset tables.
// A Tables value is never mutated once built; replacements swap the whole value.
type Tables struct {
	Influencers []Influencer     `json:"influencers"`
	Posts       []Post           `json:"posts"`
	Tracking    []TrackingRecord `json:"tracking"`
	Payouts     []Payout         `json:"payouts"`
}

// Len returns the row count of one table
func (t *Tables) Len(e Entity) int {
	switch e {
	case EntityInfluencers:
		return len(t.Influencers)
	case EntityPosts:
		return len(t.Posts)
	case EntityTracking:
		return len(t.Tracking)
	case EntityPayouts:
		return len(t.Payouts)
	}
	return 0
}

// Counts returns row counts keyed by entity
func (t *Tables) Counts() map[Entity]int {
	counts := make(map[Entity]int, len(Entities))
	for _, e := range Entities {
		counts[e] = t.Len(e)
	}
	return counts
}

// InfluencerByID indexes influencers by id. A repeated id keeps the last row.
func InfluencerByID(influencers []Influencer) map[int]Influencer {
	idx := make(map[int]Influencer, len(influencers))
	for _, inf := range influencers {
		idx[inf.ID] = inf
	}
	return idx
}
