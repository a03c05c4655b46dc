package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRatingGrade(t *testing.T) {
	tests := []struct {
		grade string
		want  RatingCategory
	}{
		{"Strong Buy", RatingStrongBuy},
		{"Buy", RatingBuy},
		{"Outperform", RatingBuy},
		{"Overweight", RatingBuy},
		{"Hold", RatingHold},
		{"Neutral", RatingHold},
		{"Equal-Weight", RatingHold},
		{"Sector Perform", RatingHold},
		{"Market Perform", RatingHold},
		{"Sell", RatingSell},
		{"Underperform", RatingSell},
		{"Underweight", RatingSell},
		{"Strong Sell", RatingStrongSell},
		{"  buy  ", RatingBuy},
		// Unmapped text defaults to hold.
		{"Top Pick", RatingHold},
		{"", RatingHold},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRatingGrade(tt.grade))
		})
	}
}

func TestRatingCategoryValue(t *testing.T) {
	assert.Equal(t, 2.0, RatingStrongBuy.Value())
	assert.Equal(t, 1.0, RatingBuy.Value())
	assert.Equal(t, 0.0, RatingHold.Value())
	assert.Equal(t, -1.0, RatingSell.Value())
	assert.Equal(t, -2.0, RatingStrongSell.Value())
}

func TestDeriveAnalystID(t *testing.T) {
	a := DeriveAnalystID("Goldman Sachs")
	b := DeriveAnalystID("Goldman Sachs")
	c := DeriveAnalystID("Morgan Stanley")

	assert.Equal(t, a, b, "same firm must yield the same id")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 8)
}

func TestInRange(t *testing.T) {
	d := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, InRange(d, time.Time{}, time.Time{}))
	assert.True(t, InRange(d, d, d))
	assert.False(t, InRange(d, d.AddDate(0, 0, 1), time.Time{}))
	assert.False(t, InRange(d, time.Time{}, d.AddDate(0, 0, -1)))
}
