package fantasy

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/omarshaarawi/fantasywrapped/internal/api/yahoo"
	"github.com/omarshaarawi/fantasywrapped/internal/awards"
	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Client       yahoo.ClientConfig
	Location     *time.Location
}

// API opens leagues on behalf of a caller. Each Open gets its own token
// source and HTTP client, shared by every award computed for that league.
type API struct {
	oauth    *oauth2.Config
	client   yahoo.ClientConfig
	location *time.Location
}

func NewAPI(cfg Config) *API {
	return &API{
		oauth:    yahoo.OAuthConfig(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL),
		client:   cfg.Client,
		location: cfg.Location,
	}
}

// Open authenticates with creds and loads the league's metadata, standings
// and matchups.
func (a *API) Open(ctx context.Context, leagueKey string, creds models.Credentials) (awards.Source, error) {
	if creds.Empty() {
		return nil, fmt.Errorf("opening league %s: %w", leagueKey, yahoo.ErrAuth)
	}
	tokens := yahoo.NewTokenSource(ctx, a.oauth, creds.AccessToken, creds.RefreshToken)
	client := yahoo.NewClient(a.client, tokens)

	league, err := yahoo.NewLeague(ctx, client, leagueKey, a.location)
	if err != nil {
		return nil, fmt.Errorf("opening league %s: %w", leagueKey, err)
	}
	return league, nil
}
