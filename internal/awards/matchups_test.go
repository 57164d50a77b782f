package awards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

func TestMatchupRecords(t *testing.T) {
	playoff := matchup(2, side("a", "A", 60), side("b", "B", 90))
	playoff.IsPlayoffs = true

	src := &fakeSource{
		teams: []models.Team{team("a", "A"), team("b", "B"), team("c", "C"), team("d", "D")},
		matchups: []models.Matchup{
			matchup(1, side("a", "A", 100), side("b", "B", 80)),
			matchup(1, side("c", "C", 50), side("d", "D", 50)),
			playoff,
			matchup(3, side("c", "C", 0), side("d", "D", 0)),
		},
	}

	results, err := MatchupRecords(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []models.ListItem{
		{Rank: 1, ImageURL: "http://logo/c", MainText: "C and D tied", Stat: "0"},
		{Rank: 2, ImageURL: "http://logo/a", MainText: "A (100) def. B (80)", Stat: "20"},
		{Rank: 3, ImageURL: "http://logo/b", MainText: "B (90) def. A (60)", SubText: "playoffs", Stat: "30"},
	}, listItems(resultByID(results, IDClosestMatchups)))

	blowouts := listItems(resultByID(results, IDBiggestBlowouts))
	require.Len(t, blowouts, 3)
	assert.Equal(t, "B (90) def. A (60)", blowouts[0].MainText)
	assert.Equal(t, "C and D tied", blowouts[2].MainText)

	assert.Equal(t, []models.ListItem{
		{Rank: 1, ImageURL: "http://logo/b", MainText: "B (170) def. A (160)", SubText: "playoffs", Stat: "10"},
		{Rank: 2, ImageURL: "http://logo/c", MainText: "C (50) def. D (50)", Stat: "0"},
	}, listItems(resultByID(results, IDRivalryDominance)))
}

func TestMatchupRecords_FractionalScores(t *testing.T) {
	src := &fakeSource{
		teams:    []models.Team{team("a", "A"), team("b", "B")},
		matchups: []models.Matchup{matchup(1, side("a", "A", 40.3), side("b", "B", 40.1))},
	}

	results, err := MatchupRecords(context.Background(), src)
	require.NoError(t, err)

	items := listItems(resultByID(results, IDClosestMatchups))
	require.Len(t, items, 1)
	assert.Equal(t, "A (40.3) def. B (40.1)", items[0].MainText)
	assert.Equal(t, "0.2", items[0].Stat)
}
