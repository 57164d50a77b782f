package awards

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

func TestDraft_PairsByRankWithinGroup(t *testing.T) {
	src := &fakeSource{
		teams: []models.Team{team("t1", "Alpha"), team("t2", "Beta")},
		picks: []models.DraftResult{
			{Pick: 1, Round: 1, TeamKey: "t1", PlayerKey: "p1"},
			{Pick: 2, Round: 1, TeamKey: "t2", PlayerKey: "p2"},
			{Pick: 3, Round: 2, TeamKey: "t2", PlayerKey: "p3"},
			{Pick: 4, Round: 2, TeamKey: "t1", PlayerKey: "p4"},
		},
		players: map[string]models.Player{
			"p1": player("p1", "Center", "C", 50),
			"p2": player("p2", "Defender", "D", 30),
			"p3": player("p3", "Winger", "LW", 80),
			"p4": player("p4", "Goalie", "G", 10),
		},
		top: map[string][]models.Player{
			"F": {player("f1", "Top F", "C", 100), player("f2", "Second F", "RW", 60)},
			"D": {player("d1", "Top D", "D", 25)},
			"G": {player("g1", "Top G", "G", 40)},
		},
	}

	results, err := Draft(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 3)

	busts := listItems(resultByID(results, IDDraftBusts))
	assert.Equal(t, []models.ListItem{
		{Rank: 1, ImageURL: "http://img/p1", MainText: "Center", SubText: "Alpha", Stat: "-50.0 pts"},
		{Rank: 2, ImageURL: "http://img/p4", MainText: "Goalie", SubText: "Alpha", Stat: "-30.0 pts"},
		{Rank: 3, ImageURL: "http://img/p2", MainText: "Defender", SubText: "Beta", Stat: "5.0 pts"},
		{Rank: 4, ImageURL: "http://img/p3", MainText: "Winger", SubText: "Beta", Stat: "20.0 pts"},
	}, busts)

	steals := listItems(resultByID(results, IDDraftSteals))
	require.Len(t, steals, 4)
	assert.Equal(t, "Winger", steals[0].MainText)
	assert.Equal(t, "+20.0 pts", steals[0].Stat)
	assert.Equal(t, "+5.0 pts", steals[1].Stat)
	assert.Equal(t, "-50.0 pts", steals[3].Stat)

	guru := listItems(resultByID(results, IDDraftGuru))
	assert.Equal(t, []models.ListItem{
		{Rank: 1, ImageURL: "http://logo/t2", MainText: "Beta", Stat: "110.0 pts"},
		{Rank: 2, ImageURL: "http://logo/t1", MainText: "Alpha", Stat: "60.0 pts"},
	}, guru)

	assert.ElementsMatch(t, []string{"F:2", "D:1", "G:1"}, src.topCalls)
}

func TestDraft_CapsAtFive(t *testing.T) {
	src := &fakeSource{
		teams:   []models.Team{team("t1", "Alpha")},
		players: map[string]models.Player{},
		top:     map[string][]models.Player{},
	}
	for i := range 7 {
		key := fmt.Sprintf("p%d", i)
		src.picks = append(src.picks, models.DraftResult{Pick: i + 1, TeamKey: "t1", PlayerKey: key})
		src.players[key] = player(key, key, "RW", float64(10*i))
		src.top["F"] = append(src.top["F"], player(fmt.Sprintf("f%d", i), "top", "C", float64(100-5*i)))
	}

	results, err := Draft(context.Background(), src)
	require.NoError(t, err)

	busts := listItems(resultByID(results, IDDraftBusts))
	steals := listItems(resultByID(results, IDDraftSteals))
	require.Len(t, busts, 5)
	require.Len(t, steals, 5)

	// Pick i scored 10i against a top player with 100-5i.
	assert.Equal(t, "p0", busts[0].MainText)
	assert.Equal(t, "-100.0 pts", busts[0].Stat)
	assert.Equal(t, "p6", steals[0].MainText)
	assert.Equal(t, "-10.0 pts", steals[0].Stat)
}

func TestDraft_SkipsUnknownPositions(t *testing.T) {
	src := &fakeSource{
		teams:   []models.Team{team("t1", "Alpha")},
		picks:   []models.DraftResult{{Pick: 1, TeamKey: "t1", PlayerKey: "p1"}},
		players: map[string]models.Player{"p1": player("p1", "Utility", "Util", 10)},
	}

	results, err := Draft(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, listItems(resultByID(results, IDDraftBusts)))
	assert.Empty(t, src.topCalls)
}

func TestDraft_PropagatesFetchErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Draft(context.Background(), &fakeSource{err: boom})
	assert.ErrorIs(t, err, boom)
}
