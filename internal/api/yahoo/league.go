package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// Getter is the upstream transport: an authenticated GET returning the
// decoded response body.
type Getter interface {
	Get(ctx context.Context, path string) (any, error)
}

type scheduleKey struct {
	teamKey string
	week    int
}

// League is the data-access layer for one league. League metadata, standings
// and the full-season matchup set are loaded once by NewLeague and are
// read-only afterwards; everything else is fetched on demand.
type League struct {
	client    Getter
	info      models.League
	teams     []models.Team
	teamIndex map[string]int
	matchups  []models.Matchup
	opponents map[scheduleKey]string

	flight singleflight.Group
	mu     sync.RWMutex
	weeks  map[int][2]time.Time
	daily  models.DailyTeamPoints
}

// NewLeague loads league metadata, standings and every matchup from the
// first to the last week of the season.
func NewLeague(ctx context.Context, client Getter, leagueKey string, loc *time.Location) (*League, error) {
	gameID, leagueID, err := parseLeagueKey(leagueKey)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	l := &League{
		client: client,
		info: models.League{
			Key:      leagueKey,
			GameID:   gameID,
			LeagueID: leagueID,
			Location: loc,
		},
	}

	if err := l.getLeague(ctx); err != nil {
		return nil, fmt.Errorf("fetching league metadata: %w", err)
	}
	if err := l.getMatchups(ctx); err != nil {
		return nil, fmt.Errorf("fetching matchups: %w", err)
	}

	slog.Info("Loaded league", "league", leagueKey, "teams", len(l.teams), "matchups", len(l.matchups))
	return l, nil
}

func parseLeagueKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[1] != "l" || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("invalid league key %q", key)
	}
	return parts[0], parts[2], nil
}

func (l *League) getLeague(ctx context.Context) error {
	path := fmt.Sprintf("/league/%s;out=standings,settings", l.info.Key)
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return err
	}

	league := node{body}.child("league")
	sh := &shape{path: path}
	loc := l.info.Location

	l.info.Name = league.child("name").str()
	l.info.StartWeek = sh.integer(league.child("start_week"), "start_week")
	l.info.EndWeek = sh.integer(league.child("end_week"), "end_week")
	l.info.PlayoffStartWeek = sh.integer(league.path("settings", "playoff_start_week"), "playoff_start_week")
	l.info.Season = sh.integer(league.child("season"), "season")
	l.info.StartDate = parseDate(sh, league.child("start_date"), "start_date", loc)
	l.info.EndDate = parseDate(sh, league.child("end_date"), "end_date", loc)

	teams := league.path("standings", "teams").items("team")
	if len(teams) == 0 {
		sh.fail("standings.teams")
	}
	l.teams = make([]models.Team, 0, len(teams))
	l.teamIndex = make(map[string]int, len(teams))
	for i, t := range teams {
		manager := t.path("managers", "manager")
		team := models.Team{
			Key:             sh.str(t.child("team_key"), "team_key"),
			Rank:            i + 1,
			Name:            t.child("name").str(),
			LogoURL:         t.path("team_logos", "team_logo", "url").str(),
			ManagerNickname: manager.child("nickname").str(),
			ManagerImageURL: manager.child("image_url").str(),
		}
		l.teamIndex[team.Key] = len(l.teams)
		l.teams = append(l.teams, team)
	}
	return sh.err
}

func (l *League) getMatchups(ctx context.Context) error {
	path := fmt.Sprintf("/league/%s/scoreboard;week=%s", l.info.Key, weekList(l.info.StartWeek, l.info.EndWeek))
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return err
	}

	sh := &shape{path: path}
	raw := node{body}.path("league", "scoreboard", "matchups").items("matchup")
	l.matchups = make([]models.Matchup, 0, len(raw))
	l.opponents = make(map[scheduleKey]string, 2*len(raw))
	for _, m := range raw {
		matchup, ok := parseMatchup(sh, m, l.info.Location)
		if !ok {
			slog.Debug("Skipping matchup without two teams", "league", l.info.Key)
			continue
		}
		for _, side := range matchup.Teams {
			if _, known := l.teamIndex[side.TeamKey]; !known {
				sh.fail("teams.team_key")
			}
		}
		l.opponents[scheduleKey{matchup.Teams[0].TeamKey, matchup.Week}] = matchup.Teams[1].TeamKey
		l.opponents[scheduleKey{matchup.Teams[1].TeamKey, matchup.Week}] = matchup.Teams[0].TeamKey
		l.matchups = append(l.matchups, matchup)
	}
	return sh.err
}

func parseMatchup(sh *shape, m node, loc *time.Location) (models.Matchup, bool) {
	teams := m.child("teams").items("team")
	if len(teams) != 2 {
		return models.Matchup{}, false
	}
	matchup := models.Matchup{
		Week:          sh.integer(m.child("week"), "week"),
		IsTied:        m.child("is_tied").flag(),
		WinnerTeamKey: m.child("winner_team_key").str(),
		IsPlayoffs:    m.child("is_playoffs").flag(),
		IsConsolation: m.child("is_consolation").flag(),
	}
	if start := m.child("week_start"); start.exists() {
		matchup.WeekStart = parseDate(sh, start, "week_start", loc)
	}
	if end := m.child("week_end"); end.exists() {
		matchup.WeekEnd = parseDate(sh, end, "week_end", loc)
	}
	for i, t := range teams {
		matchup.Teams[i] = models.TeamSide{
			TeamKey: sh.str(t.child("team_key"), "team_key"),
			Name:    t.child("name").str(),
			LogoURL: t.path("team_logos", "team_logo", "url").str(),
			Points:  t.path("team_points", "total").float(),
		}
	}
	return matchup, true
}

func parseDate(sh *shape, n node, field string, loc *time.Location) time.Time {
	raw := sh.str(n, field)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(models.DateLayout, raw, loc)
	if err != nil {
		sh.fail(field)
	}
	return t
}

func weekList(start, end int) string {
	weeks := make([]string, 0, end-start+1)
	for w := start; w <= end; w++ {
		weeks = append(weeks, strconv.Itoa(w))
	}
	return strings.Join(weeks, ",")
}

func (l *League) Info() models.League {
	return l.info
}

func (l *League) Teams() []models.Team {
	return l.teams
}

func (l *League) Matchups() []models.Matchup {
	return l.matchups
}

func (l *League) Team(key string) (models.Team, bool) {
	i, ok := l.teamIndex[key]
	if !ok {
		return models.Team{}, false
	}
	return l.teams[i], true
}

func (l *League) TeamName(key string) string {
	if team, ok := l.Team(key); ok {
		return team.Name
	}
	return "Unknown"
}

// Opponent returns the team teamKey faced in week. ok is false on a bye or
// irregular schedule.
func (l *League) Opponent(teamKey string, week int) (string, bool) {
	opp, ok := l.opponents[scheduleKey{teamKey, week}]
	return opp, ok
}

// WeekDates returns every date of a scoring week. The game-week calendar is
// fetched on first use; the league's own start and end dates bound its first
// and last week.
func (l *League) WeekDates(ctx context.Context, week int) ([]string, error) {
	l.mu.RLock()
	weeks := l.weeks
	l.mu.RUnlock()

	if weeks == nil {
		_, err, _ := l.flight.Do("game_weeks", func() (any, error) {
			return nil, l.loadGameWeeks(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("fetching game weeks: %w", err)
		}
		l.mu.RLock()
		weeks = l.weeks
		l.mu.RUnlock()
	}

	bounds, ok := weeks[week]
	if !ok {
		return nil, fmt.Errorf("week %d not in game calendar", week)
	}
	return models.Dates(bounds[0], bounds[1]), nil
}

func (l *League) loadGameWeeks(ctx context.Context) error {
	l.mu.RLock()
	loaded := l.weeks != nil
	l.mu.RUnlock()
	if loaded {
		return nil
	}

	path := fmt.Sprintf("/game/%s/game_weeks", l.info.GameID)
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return err
	}

	sh := &shape{path: path}
	weeks := make(map[int][2]time.Time)
	for _, gw := range (node{body}).path("game", "game_weeks").items("game_week") {
		week := sh.integer(gw.child("week"), "week")
		start := parseDate(sh, gw.child("start"), "start", l.info.Location)
		end := parseDate(sh, gw.child("end"), "end", l.info.Location)
		if week == l.info.StartWeek {
			start = l.info.StartDate
		}
		if week == l.info.EndWeek {
			end = l.info.EndDate
		}
		weeks[week] = [2]time.Time{start, end}
	}
	if sh.err != nil {
		return sh.err
	}

	l.mu.Lock()
	l.weeks = weeks
	l.mu.Unlock()
	return nil
}

// DailyTeamPoints fetches every team's points for every date of the season in
// one request. Concurrent callers share the request and its result.
func (l *League) DailyTeamPoints(ctx context.Context) (models.DailyTeamPoints, error) {
	l.mu.RLock()
	daily := l.daily
	l.mu.RUnlock()
	if daily != nil {
		return daily, nil
	}

	v, err, _ := l.flight.Do("daily_team_points", func() (any, error) {
		l.mu.RLock()
		cached := l.daily
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		return l.fetchDailyTeamPoints(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching daily team points: %w", err)
	}
	return v.(models.DailyTeamPoints), nil
}

func (l *League) fetchDailyTeamPoints(ctx context.Context) (models.DailyTeamPoints, error) {
	dates := models.Dates(l.info.StartDate, l.info.EndDate)
	path := fmt.Sprintf("/league/%s/teams/stats_collection;types=date;date=%s", l.info.Key, strings.Join(dates, ","))
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	sh := &shape{path: path}
	daily := make(models.DailyTeamPoints, len(l.teams))
	for _, t := range (node{body}).path("league", "teams").items("team") {
		key := sh.str(t.child("team_key"), "team_key")
		byDate := make(map[string]float64, len(dates))
		for _, pts := range t.child("team_stats_collection").items("team_points") {
			byDate[pts.child("date").str()] = pts.child("total").float()
		}
		daily[key] = byDate
	}
	if sh.err != nil {
		return nil, sh.err
	}

	l.mu.Lock()
	l.daily = daily
	l.mu.Unlock()
	return daily, nil
}
