package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfluencerByID(t *testing.T) {
	idx := InfluencerByID([]Influencer{
		{ID: 1, Name: "Influencer_1"},
		{ID: 2, Name: "Influencer_2"},
		{ID: 2, Name: "Influencer_2b"},
	})

	require.Len(t, idx, 2)
	assert.Equal(t, "Influencer_1", idx[1].Name)
	assert.Equal(t, "Influencer_2b", idx[2].Name)
	assert.Empty(t, InfluencerByID(nil))
}

func TestParseEntity(t *testing.T) {
	for _, e := range Entities {
		got, err := ParseEntity(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := ParseEntity("campaigns")
	assert.Error(t, err)
}

func TestEntityColumnsAreCopied(t *testing.T) {
	cols := EntityPayouts.Columns()
	cols[0] = "changed"
	assert.Equal(t, "influencer_id", EntityPayouts.Columns()[0])
	assert.Equal(t, "tracking_data.csv", EntityTracking.FileName())
}
