package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

type SeasonAwardsArgs struct {
	LeagueKey string `json:"league_key" jsonschema:"League key such as 423.l.12345 (required)"`
	Award     string `json:"award,omitempty" jsonschema:"Award id or title; omit for every award"`
}

func (s *Server) mcpServer() *mcp.Server {
	version := s.cfg.Version
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fantasy-wrapped",
			Version: version,
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "season_awards",
		Description: "Season awards for a fantasy hockey league: standings, draft steals and busts, comebacks, worst drops and more",
	}, s.seasonAwards)

	return server
}

func (s *Server) mcpHandler() http.Handler {
	server := s.mcpServer()
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (s *Server) seasonAwards(ctx context.Context, _ *mcp.CallToolRequest, args SeasonAwardsArgs) (*mcp.CallToolResult, any, error) {
	leagueKey := strings.TrimSpace(args.LeagueKey)
	if leagueKey == "" {
		return toolError(fmt.Errorf("league_key is required")), nil, nil
	}

	list, _, err := s.wrapped.Collect(ctx, leagueKey, s.cfg.ToolCreds)
	if err != nil {
		return toolError(err), nil, nil
	}

	var out any = list
	if args.Award != "" {
		award, ok := service.FindAward(list, args.Award)
		if !ok {
			return toolError(fmt.Errorf("award not found: %s", args.Award)), nil, nil
		}
		out = award
	}
	return toolJSON(json.Marshal(out))
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
