package models

import (
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

type League struct {
	Key              string
	GameID           string
	LeagueID         string
	Name             string
	Season           int
	StartWeek        int
	EndWeek          int
	PlayoffStartWeek int
	StartDate        time.Time
	EndDate          time.Time
	Location         *time.Location
}

// Team is one entry of the league standings. Rank is its 1-based position in
// the standings collection.
type Team struct {
	Key             string
	Rank            int
	Name            string
	LogoURL         string
	ManagerNickname string
	ManagerImageURL string
}

type TeamSide struct {
	TeamKey string
	Name    string
	LogoURL string
	Points  float64
}

type Matchup struct {
	Week          int
	WeekStart     time.Time
	WeekEnd       time.Time
	Teams         [2]TeamSide
	IsTied        bool
	WinnerTeamKey string
	IsPlayoffs    bool
	IsConsolation bool
}

// Winner returns the winning and losing sides. ok is false for ties and
// matchups without a recorded winner.
func (m Matchup) Winner() (winner, loser TeamSide, ok bool) {
	if m.IsTied || m.WinnerTeamKey == "" {
		return TeamSide{}, TeamSide{}, false
	}
	if m.Teams[0].TeamKey == m.WinnerTeamKey {
		return m.Teams[0], m.Teams[1], true
	}
	if m.Teams[1].TeamKey == m.WinnerTeamKey {
		return m.Teams[1], m.Teams[0], true
	}
	return TeamSide{}, TeamSide{}, false
}

// Side returns the side for teamKey and its opponent.
func (m Matchup) Side(teamKey string) (own, opp TeamSide, ok bool) {
	switch teamKey {
	case m.Teams[0].TeamKey:
		return m.Teams[0], m.Teams[1], true
	case m.Teams[1].TeamKey:
		return m.Teams[1], m.Teams[0], true
	}
	return TeamSide{}, TeamSide{}, false
}

type PeriodPoints struct {
	Period string
	Total  float64
}

type Player struct {
	Key             string
	Name            string
	ImageURL        string
	PrimaryPosition string
	Points          []PeriodPoints
	Stats           map[string]string
}

func (p Player) TotalPoints() float64 {
	var total float64
	for _, pts := range p.Points {
		total += pts.Total
	}
	return total
}

// StatInt reads an integer stat value. Missing stats and the "-" placeholder
// report ok=false.
func (p Player) StatInt(statID string) (int, bool) {
	raw, ok := p.Stats[statID]
	if !ok || raw == "" || raw == "-" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

type TransactionType string

const (
	TransactionAdd     TransactionType = "add"
	TransactionDrop    TransactionType = "drop"
	TransactionAddDrop TransactionType = "add/drop"
	TransactionTrade   TransactionType = "trade"
)

type TransactionPlayer struct {
	PlayerKey          string
	Name               string
	Type               TransactionType
	SourceTeamKey      string
	DestinationTeamKey string
}

type Transaction struct {
	Key       string
	Type      TransactionType
	Status    string
	Timestamp int64
	Players   []TransactionPlayer
}

func (t Transaction) Successful() bool {
	return t.Status == "" || t.Status == "successful"
}

type DraftResult struct {
	Pick      int
	Round     int
	TeamKey   string
	PlayerKey string
}

// DailyTeamPoints maps team key to date (DateLayout) to points scored that day.
type DailyTeamPoints map[string]map[string]float64

func (d DailyTeamPoints) On(teamKey, date string) (float64, bool) {
	byDate, ok := d[teamKey]
	if !ok {
		return 0, false
	}
	pts, ok := byDate[date]
	return pts, ok
}

type PlayerTally struct {
	Name     string
	ImageURL string
	Points   float64
}

type Credentials struct {
	AccessToken  string
	RefreshToken string
}

func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Dates returns every calendar date from start to end inclusive, formatted
// with DateLayout.
func Dates(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}
