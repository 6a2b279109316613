package tubeserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchMarkup = `<html><body>
<span id="eow-title">Never Gonna Give You Up</span>
<div class="watch-view-count">1,234 views</div>
<strong class="watch-time-text">Published on Oct 25, 2009</strong>
<p id="eow-description">See <a href="https://example.com">this</a><br>and that</p>
</body></html>`

const searchMarkup = `<html><body><ol class="item-section">
<li><h3 class="yt-lockup-title"><a href="/watch?v=dQw4w9WgXcQ" title="Never Gonna Give You Up">x</a></h3></li>
</ol></body></html>`

func newStub(t *testing.T, c engine.Config) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case r.URL.Path == "/results":
			_, _ = w.Write([]byte(searchMarkup))
		case r.URL.Path == "/watch" && r.URL.Query().Get("v") == "dQw4w9WgXcQ":
			_, _ = w.Write([]byte(watchMarkup))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c.YouTubeBaseURL = srv.URL
	c.HTTPClient = srv.Client()
	c.RetryInitialWait = time.Millisecond
	engine.Init(c)
	engine.InitCache("", time.Minute, 100, time.Minute)
	t.Cleanup(func() { engine.Init(engine.Config{}) })
	return &calls
}

func TestHandleVideoSearchValidation(t *testing.T) {
	tests := []struct {
		name  string
		input engine.VideoSearchInput
		want  string
	}{
		{"empty query", engine.VideoSearchInput{}, "query is required"},
		{"blank query", engine.VideoSearchInput{Query: "   "}, "query is required"},
		{"page too large", engine.VideoSearchInput{Query: "go", Page: maxSearchPage + 1}, "page must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handleVideoSearch(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandleVideoSearchCaches(t *testing.T) {
	calls := newStub(t, engine.Config{})

	out, err := handleVideoSearch(context.Background(), engine.VideoSearchInput{Query: "rick astley"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, "markup", out.Mode)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "dQw4w9WgXcQ", out.Results[0].ID)

	again, err := handleVideoSearch(context.Background(), engine.VideoSearchInput{Query: "rick astley"})
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandleVideoPage(t *testing.T) {
	newStub(t, engine.Config{})

	out, err := handleVideoPage(context.Background(), engine.VideoPageInput{Video: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", out.ID)
	assert.Equal(t, "markup", out.Mode)
	assert.Equal(t, "See this\nand that", out.Video.Description)
	assert.Equal(t, 1234, out.Video.ViewCount)
}

func TestHandleVideoPageMarkdown(t *testing.T) {
	newStub(t, engine.Config{})

	out, err := handleVideoPage(context.Background(), engine.VideoPageInput{Video: "dQw4w9WgXcQ", Format: "markdown"})
	require.NoError(t, err)
	assert.Contains(t, out.Video.Description, "[this](https://example.com)")
}

func TestHandleVideoPageTruncatesDescription(t *testing.T) {
	newStub(t, engine.Config{MaxDescriptionChars: 8})

	out, err := handleVideoPage(context.Background(), engine.VideoPageInput{Video: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.NotEqual(t, "See this\nand that", out.Video.Description)
	assert.True(t, strings.HasSuffix(out.Video.Description, "..."))
	assert.LessOrEqual(t, len([]rune(out.Video.Description)), 8+len("..."))
}

func TestHandleVideoPageValidation(t *testing.T) {
	tests := []struct {
		name  string
		input engine.VideoPageInput
		want  string
	}{
		{"empty", engine.VideoPageInput{}, "video is required"},
		{"no id", engine.VideoPageInput{Video: "not a video"}, "no video id"},
		{"bad format", engine.VideoPageInput{Video: "dQw4w9WgXcQ", Format: "pdf"}, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handleVideoPage(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandleVideoPagesPartialFailure(t *testing.T) {
	newStub(t, engine.Config{})

	out, err := handleVideoPages(context.Background(), engine.VideoPagesInput{
		Videos: []string{"dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "xxxxxxxxxxx", "nope"},
	})
	require.NoError(t, err)
	require.Len(t, out.Videos, 1)
	assert.Equal(t, "dQw4w9WgXcQ", out.Videos[0].ID)
	assert.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors, "xxxxxxxxxxx")
	assert.Contains(t, out.Errors, "nope")
}

func TestHandleVideoPagesValidation(t *testing.T) {
	_, err := handleVideoPages(context.Background(), engine.VideoPagesInput{})
	require.Error(t, err)

	tooMany := make([]string, maxBatchVideos+1)
	for i := range tooMany {
		tooMany[i] = "dQw4w9WgXcQ"
	}
	_, err = handleVideoPages(context.Background(), engine.VideoPagesInput{Videos: tooMany})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most")
}

func TestResolveForceJSON(t *testing.T) {
	engine.Init(engine.Config{ForceJSON: true})
	t.Cleanup(func() { engine.Init(engine.Config{}) })

	off := false
	assert.True(t, resolveForceJSON(nil))
	assert.False(t, resolveForceJSON(&off))
}
