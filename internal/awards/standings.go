package awards

import (
	"context"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// Standings lists the teams in their official rank order.
func Standings(_ context.Context, src Source) ([]models.Result, error) {
	teams := src.Teams()
	items := make([]models.ListItem, 0, len(teams))
	for _, team := range teams {
		items = append(items, models.ListItem{
			Rank:     team.Rank,
			ImageURL: team.LogoURL,
			MainText: team.Name,
		})
	}
	return []models.Result{result(IDStandings, items)}, nil
}
