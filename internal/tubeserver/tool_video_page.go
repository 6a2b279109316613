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

const (
	maxBatchVideos   = 10
	batchParallelism = 4
)

func registerVideoPage(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_page",
		Description: "Get metadata of a single YouTube video: title, description (line breaks kept; format=markdown keeps links), view count and publish date. Accepts a video id or any YouTube URL.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoPageInput) (*mcp.CallToolResult, engine.VideoPageOutput, error) {
		out, err := handleVideoPage(ctx, input)
		if err != nil {
			return nil, engine.VideoPageOutput{}, err
		}
		return nil, out, nil
	})
}

func registerVideoPages(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_pages",
		Description: "Get metadata of up to 10 YouTube videos in one call. Pages are fetched in parallel; per-video failures are reported in errors without failing the batch.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoPagesInput) (*mcp.CallToolResult, engine.VideoPagesOutput, error) {
		out, err := handleVideoPages(ctx, input)
		if err != nil {
			return nil, engine.VideoPagesOutput{}, err
		}
		return nil, out, nil
	})
}

func normalizeFormat(format string) (markdown bool, err error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return false, nil
	case "markdown", "md":
		return true, nil
	}
	return false, fmt.Errorf("unknown format %q: want text or markdown", format)
}

func handleVideoPage(ctx context.Context, input engine.VideoPageInput) (engine.VideoPageOutput, error) {
	if strings.TrimSpace(input.Video) == "" {
		return engine.VideoPageOutput{}, errors.New("video is required")
	}
	id := sources.NormalizeVideoID(input.Video)
	if id == "" {
		return engine.VideoPageOutput{}, fmt.Errorf("no video id in %q", input.Video)
	}
	markdown, err := normalizeFormat(input.Format)
	if err != nil {
		return engine.VideoPageOutput{}, err
	}
	return fetchVideoPage(ctx, id, resolveForceJSON(input.ForceJSON), markdown)
}

func fetchVideoPage(ctx context.Context, id string, forceJSON, markdown bool) (engine.VideoPageOutput, error) {
	cacheKey := engine.CacheKey("video_page", id, strconv.FormatBool(forceJSON), strconv.FormatBool(markdown))
	if out, ok := toolutil.CacheLoadJSON[engine.VideoPageOutput](ctx, cacheKey); ok {
		return out, nil
	}

	var out engine.VideoPageOutput
	err := engine.TrackOperation(ctx, "video_page", func(ctx context.Context) error {
		page, err := sources.FetchVideo(ctx, id, forceJSON)
		if err != nil {
			return err
		}
		video := page.Video
		if markdown {
			md, err := page.DescriptionMarkdown()
			if err != nil {
				slog.Debug("video_page: markdown conversion failed, keeping text", slog.String("id", id), slog.Any("error", err))
			} else {
				video.Description = md
			}
		}
		video.Description = engine.TruncateRunes(video.Description, engine.Cfg.MaxDescriptionChars, "...")
		out = engine.VideoPageOutput{
			ID:    page.ID,
			URL:   page.URL,
			Mode:  page.Mode.String(),
			Video: video,
		}
		return nil
	})
	if err != nil {
		slog.Warn("video_page: failed", slog.String("id", id), slog.Any("error", err))
		return engine.VideoPageOutput{}, err
	}

	toolutil.CacheStoreJSON(ctx, cacheKey, out)
	return out, nil
}

func handleVideoPages(ctx context.Context, input engine.VideoPagesInput) (engine.VideoPagesOutput, error) {
	if len(input.Videos) == 0 {
		return engine.VideoPagesOutput{}, errors.New("videos is required")
	}
	if len(input.Videos) > maxBatchVideos {
		return engine.VideoPagesOutput{}, fmt.Errorf("at most %d videos per call, got %d", maxBatchVideos, len(input.Videos))
	}
	forceJSON := resolveForceJSON(input.ForceJSON)

	out := engine.VideoPagesOutput{Videos: make([]engine.VideoPageOutput, 0, len(input.Videos))}
	addError := func(video string, err error) {
		if out.Errors == nil {
			out.Errors = make(map[string]string)
		}
		out.Errors[video] = err.Error()
	}

	var ids, keys []string
	seen := make(map[string]bool, len(input.Videos))
	for _, v := range input.Videos {
		id := sources.NormalizeVideoID(v)
		if id == "" {
			addError(v, errors.New("no video id"))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		keys = append(keys, v)
	}

	pages, errs := toolutil.ForEachParallel(ctx, ids, batchParallelism, func(ctx context.Context, id string) (engine.VideoPageOutput, error) {
		return fetchVideoPage(ctx, id, forceJSON, false)
	})
	for i := range ids {
		if errs[i] != nil {
			addError(keys[i], errs[i])
			continue
		}
		out.Videos = append(out.Videos, pages[i])
	}

	slog.Info("video_pages: done", slog.Int("requested", len(input.Videos)), slog.Int("ok", len(out.Videos)), slog.Int("failed", len(out.Errors)))
	return out, nil
}
