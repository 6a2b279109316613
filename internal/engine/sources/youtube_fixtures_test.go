package sources

import "strings"

// Test bodies for both response shapes.

const rickEntry = `{"videoRenderer":{"videoId":"dQw4w9WgXcQ",` +
	`"title":{"runs":[{"text":"Never Gonna Give You Up"}]},` +
	`"thumbnail":{"thumbnails":[{"url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/hq720.jpg"}]},` +
	`"lengthText":{"simpleText":"3:33"},` +
	`"viewCountText":{"simpleText":"1,234,567 views"},` +
	`"publishedTimeText":{"simpleText":"14 years ago"},` +
	`"ownerText":{"runs":[{"text":"Rick Astley"}]},` +
	`"channelThumbnailSupportedRenderers":{"channelThumbnailWithLinkRenderer":{"thumbnail":{"thumbnails":[{"url":"https://yt3.ggpht.com/rick.jpg"}]}}}}}`

const noIDEntry = `{"videoRenderer":{"title":{"runs":[{"text":"No id here"}]}}}`

const shelfEntry = `{"shelfRenderer":{"title":{"simpleText":"People also watched"}}}`

// searchJSONBody wraps entries in the search-results payload path.
func searchJSONBody(entries ...string) string {
	return `<!DOCTYPE html><html><body><script nonce="a">var ytInitialData = ` +
		`{"responseContext":{"visitorData":"x"},"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":` +
		`{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[` +
		strings.Join(entries, ",") +
		`]}}]}}}}};</script><script nonce="a">window.ytcsi = {};</script></body></html>`
}

const watchJSONBody = `<html><body><script>var ytInitialData = {"responseContext":{},"contents":{"twoColumnWatchNextResults":` +
	`{"results":{"results":{"contents":[` +
	`{"videoPrimaryInfoRenderer":{"title":{"runs":[{"text":"Never Gonna "},{"text":"Give You Up"}]},` +
	`"viewCount":{"videoViewCountRenderer":{"viewCount":{"simpleText":"1,500,000,000 views"}}},` +
	`"dateText":{"simpleText":"Premiered Oct 25, 2009"}}},` +
	`{"videoSecondaryInfoRenderer":{"attributedDescription":{"content":"Line one\nLine two"}}}` +
	`]}}}}};</script><script>var x = 1;</script></body></html>`

const watchMarkupBody = `<html><head><title>Never Gonna Give You Up - YouTube</title></head><body>
<div id="watch7-content">
<h1 class="watch-title-container"><span id="eow-title" class="watch-title" title="Never Gonna Give You Up">
    Never Gonna Give You Up
  </span></h1>
<div class="watch-view-count">1,234,567 views</div>
<strong class="watch-time-text">Published on Oct 25, 2009</strong>
<p id="eow-description">Line one<br>Line <a href="https://example.com/two">two</a><br/>Line three<script>ignored()</script></p>
</div></body></html>`

const searchMarkupBody = `<html><body><ol class="section-list"><li><ol class="item-section">
<li><div class="yt-lockup yt-lockup-video">
  <div class="yt-lockup-thumbnail"><img src="/yts/img/pixel.gif" data-thumb="https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"><span class="video-time">3:33</span></div>
  <h3 class="yt-lockup-title"><a href="/watch?v=dQw4w9WgXcQ&amp;list=PL1" title="Never Gonna Give You Up">Never Gonna Give You Up</a></h3>
  <div class="yt-lockup-byline"><a href="/user/RickAstleyVEVO">Rick Astley</a></div>
  <div class="yt-lockup-meta"><ul class="yt-lockup-meta-info"><li>14 years ago</li><li>1,234,567 views</li></ul></div>
</div></li>
<li><div class="search-refinements">Searches related to rick</div></li>
<li><div class="yt-lockup"><h3 class="yt-lockup-title"><a href="/watch?v=" title="Broken">Broken</a></h3></div></li>
<li><div class="yt-lockup"><h3 class="yt-lockup-title"><a href="/watch?v=yPYZpwSpKmA"></a></h3></div></li>
</ol></li></ol></body></html>`

// playerResponseScript precedes ytInitialData on real watch pages and opens with the same signature.
const playerResponseScript = `<script nonce="p">var ytInitialPlayerResponse = {"responseContext":{"serviceTrackingParams":[]},` +
	`"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"Never Gonna Give You Up"}};` +
	`var meta = document.createElement('meta'); meta.name = 'referrer';</script>`

// watchJSONBodyWithPlayer is watchJSONBody with the player response script in front of it.
var watchJSONBodyWithPlayer = strings.Replace(watchJSONBody, "<body>", "<body>"+playerResponseScript, 1)

// watchJSONBodyUnmarked assigns the page state without the usual variable name.
var watchJSONBodyUnmarked = strings.Replace(watchJSONBodyWithPlayer, "var ytInitialData = ", "window.__state = ", 1)
