package tubeserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/sources"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxSearchPage = 50

func registerVideoSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_search",
		Description: "Search YouTube videos. Returns one results page as structured JSON: id, title, thumbnail, duration (hh:mm:ss), view count, compact publish age (3y, 2mo, 5d), channel name and avatar. Works on both the embedded-JSON and server-rendered response shapes; mode reports which one was served.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoSearchInput) (*mcp.CallToolResult, engine.VideoSearchOutput, error) {
		out, err := handleVideoSearch(ctx, input)
		if err != nil {
			return nil, engine.VideoSearchOutput{}, err
		}
		return nil, out, nil
	})
}

func handleVideoSearch(ctx context.Context, input engine.VideoSearchInput) (engine.VideoSearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return engine.VideoSearchOutput{}, errors.New("query is required")
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}
	if page > maxSearchPage {
		return engine.VideoSearchOutput{}, fmt.Errorf("page must be between 1 and %d", maxSearchPage)
	}
	forceJSON := resolveForceJSON(input.ForceJSON)

	cacheKey := engine.CacheKey("video_search", query, strconv.Itoa(page), strconv.FormatBool(forceJSON))
	if out, ok := toolutil.CacheLoadJSON[engine.VideoSearchOutput](ctx, cacheKey); ok {
		return out, nil
	}

	var out engine.VideoSearchOutput
	err := engine.TrackOperation(ctx, "video_search", func(ctx context.Context) error {
		res, err := sources.SearchVideos(ctx, query, page, forceJSON)
		if err != nil {
			return err
		}
		out = engine.VideoSearchOutput{
			Query:   query,
			Page:    page,
			Mode:    res.Mode.String(),
			Count:   len(res.Items),
			Results: res.Items,
		}
		return nil
	})
	if err != nil {
		slog.Warn("video_search: failed", slog.String("query", query), slog.Int("page", page), slog.Any("error", err))
		return engine.VideoSearchOutput{}, err
	}

	slog.Info("video_search: done",
		slog.String("query", query), slog.Int("page", page), slog.String("mode", out.Mode), slog.Int("results", out.Count))
	toolutil.CacheStoreJSON(ctx, cacheKey, out)
	return out, nil
}
