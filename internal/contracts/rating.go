package contracts

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// RatingCategory is the closed set of analyst rating categories every
// provider must map its source vocabulary onto.
type RatingCategory string

const (
	RatingStrongBuy  RatingCategory = "strong_buy"
	RatingBuy        RatingCategory = "buy"
	RatingHold       RatingCategory = "hold"
	RatingSell       RatingCategory = "sell"
	RatingStrongSell RatingCategory = "strong_sell"
)

// Value returns the numeric contribution of a rating to the company
// investment score, on the -2..+2 scale.
func (c RatingCategory) Value() float64 {
	switch c {
	case RatingStrongBuy:
		return 2.0
	case RatingBuy:
		return 1.0
	case RatingSell:
		return -1.0
	case RatingStrongSell:
		return -2.0
	default:
		return 0.0
	}
}

// Bullish reports whether the category predicts upside.
func (c RatingCategory) Bullish() bool {
	return c == RatingStrongBuy || c == RatingBuy
}

// Bearish reports whether the category predicts downside.
func (c RatingCategory) Bearish() bool {
	return c == RatingStrongSell || c == RatingSell
}

// gradeMappings maps vendor grade vocabulary onto rating categories.
// Longer phrases are listed before their substrings so "strong buy"
// never matches as "buy".
var gradeMappings = []struct {
	phrase   string
	category RatingCategory
}{
	{"strong buy", RatingStrongBuy},
	{"strong sell", RatingStrongSell},
	{"conviction buy", RatingStrongBuy},
	{"outperform", RatingBuy},
	{"overweight", RatingBuy},
	{"accumulate", RatingBuy},
	{"buy", RatingBuy},
	{"underperform", RatingSell},
	{"underweight", RatingSell},
	{"reduce", RatingSell},
	{"sell", RatingSell},
	{"equal-weight", RatingHold},
	{"equal weight", RatingHold},
	{"sector perform", RatingHold},
	{"market perform", RatingHold},
	{"peer perform", RatingHold},
	{"in-line", RatingHold},
	{"neutral", RatingHold},
	{"hold", RatingHold},
}

// ParseRatingGrade maps free-text vendor grades ("Outperform", "Equal-Weight",
// "Mkt Perform"...) onto the closed category set. Unmapped or ambiguous text
// defaults to hold rather than failing the row.
func ParseRatingGrade(grade string) RatingCategory {
	lower := strings.ToLower(strings.TrimSpace(grade))
	for _, m := range gradeMappings {
		if strings.Contains(lower, m.phrase) {
			return m.category
		}
	}
	return RatingHold
}

// DeriveAnalystID derives a stable analyst identifier from a firm name for
// sources that carry no native analyst id. Same firm always yields the same
// id, so repeated ingestion never creates duplicate analysts.
func DeriveAnalystID(firm string) string {
	sum := md5.Sum([]byte(firm))
	return hex.EncodeToString(sum[:])[:8]
}
