package awards

import (
	"github.com/shopspring/decimal"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// ranked truncates items to limit (0 keeps all) and numbers them from 1.
func ranked(items []models.ListItem, limit int) []models.ListItem {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]models.ListItem, len(items))
	for i, item := range items {
		item.Rank = i + 1
		out[i] = item
	}
	return out
}

// pts formats a point total as "X.X pts".
func pts(v float64) string {
	return models.Fixed(models.Round1(v), 1) + " pts"
}

// signedPts formats a point differential as "+X.X pts" or "-X.X pts".
func signedPts(v float64) string {
	s := models.Fixed(models.Round1(v), 1)
	if v >= 0 {
		s = "+" + s
	}
	return s + " pts"
}

// score formats a fantasy score with at most two fractional digits.
func score(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func result(id string, items []models.ListItem) models.Result {
	return models.Result{ID: id, Data: items}
}
