package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"searchbot/config"
	"searchbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const snippetSelector = "div.snippet"

func snippetPage(texts ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, t := range texts {
		fmt.Fprintf(&b, `<div class="snippet">%s</div>`, t)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// pageServer serves markup after delay and records the last query and user agent
type pageServer struct {
	*httptest.Server
	lastQuery atomic.Value
	lastAgent atomic.Value
}

func newPageServer(t *testing.T, delay time.Duration, status int, markup string) *pageServer {
	t.Helper()
	ps := &pageServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.lastQuery.Store(r.URL.Query().Get("q"))
		ps.lastAgent.Store(r.Header.Get("User-Agent"))
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(markup))
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pageServer) source(name string) types.Source {
	return types.Source{Name: name, URLTemplate: ps.URL + "/search?q={query}", Selector: snippetSelector}
}

// newTestFetcher disables keep-alives so no client connections outlive a test
func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(FetcherConfig{
		Timeout: timeout,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBuildURL(t *testing.T) {
	src := types.Source{URLTemplate: "https://example.com/search?q={query}&lang=en"}
	assert.Equal(t, "https://example.com/search?q=weather+today&lang=en", BuildURL(src, "weather today"))
	assert.Equal(t, "https://example.com/search?q=a%26b%3Dc&lang=en", BuildURL(src, "a&b=c"))
}

func TestFetchSendsUserAgentAndQuery(t *testing.T) {
	ps := newPageServer(t, 0, http.StatusOK, snippetPage("hello"))
	f := newTestFetcher(time.Second)
	f.userAgent = "searchbot-test"

	res := f.Fetch(context.Background(), 2, ps.source("one"), "go & rust")

	require.True(t, res.Succeeded)
	assert.Equal(t, 2, res.SourceIndex)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Markup, "hello")
	assert.Equal(t, "go & rust", ps.lastQuery.Load())
	assert.Equal(t, "searchbot-test", ps.lastAgent.Load())
}

func TestFetchDefaultUserAgent(t *testing.T) {
	ps := newPageServer(t, 0, http.StatusOK, "ok")
	res := newTestFetcher(time.Second).Fetch(context.Background(), 0, ps.source("one"), "q")

	require.True(t, res.Succeeded)
	assert.Equal(t, config.DefaultUserAgent, ps.lastAgent.Load())
}

func TestFetchNon2xxStillReturnsBody(t *testing.T) {
	ps := newPageServer(t, 0, http.StatusServiceUnavailable, snippetPage("still here"))
	res := newTestFetcher(time.Second).Fetch(context.Background(), 0, ps.source("one"), "q")

	assert.True(t, res.Succeeded)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, types.ExtractedText{"still here"}, Extract(ps.source("one"), res, 3))
}

func TestFetchTimeout(t *testing.T) {
	ps := newPageServer(t, 500*time.Millisecond, http.StatusOK, snippetPage("late"))
	res := newTestFetcher(50*time.Millisecond).Fetch(context.Background(), 0, ps.source("slow"), "q")

	assert.False(t, res.Succeeded)
	assert.Empty(t, res.Markup)
}

func TestFetchUnreachable(t *testing.T) {
	ps := newPageServer(t, 0, http.StatusOK, "")
	src := ps.source("gone")
	ps.Close()

	res := newTestFetcher(time.Second).Fetch(context.Background(), 0, src, "q")
	assert.False(t, res.Succeeded)
}

func TestExtractSelectorCapsFragments(t *testing.T) {
	markup := snippetPage("one", "two", "three", "four", "five")
	assert.Equal(t, types.ExtractedText{"one", "two", "three"}, ExtractSelector(markup, snippetSelector, 3))
	assert.Equal(t, types.ExtractedText{"one"}, ExtractSelector(markup, snippetSelector, 1))
}

func TestExtractSelectorCollapsesWhitespace(t *testing.T) {
	markup := `<div class="snippet">  Sunny
	   and <b>warm</b> </div>`
	assert.Equal(t, types.ExtractedText{"Sunny and warm"}, ExtractSelector(markup, snippetSelector, 3))
}

func TestExtractEdgeCases(t *testing.T) {
	src := types.Source{Selector: snippetSelector}

	tests := []struct {
		name string
		res  types.FetchResult
	}{
		{name: "failed fetch", res: types.FetchResult{Markup: snippetPage("x")}},
		{name: "empty markup", res: types.FetchResult{Succeeded: true}},
		{name: "no matches", res: types.FetchResult{Succeeded: true, Markup: "<p>nothing here</p>"}},
		{name: "malformed markup", res: types.FetchResult{Succeeded: true, Markup: "<div class=\"snip<<<>>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Extract(src, tt.res, 3)
			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestExtractFeed(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>News</title>
<item><title>First</title><description>&lt;p&gt;Alpha &lt;b&gt;story&lt;/b&gt;&lt;/p&gt;</description></item>
<item><title>Second</title></item>
<item><description>Only a description</description></item>
<item><title>Fourth</title><description>dropped</description></item>
</channel></rss>`

	src := types.Source{Kind: types.KindFeed}
	out := Extract(src, types.FetchResult{Succeeded: true, Markup: feed}, 3)
	assert.Equal(t, types.ExtractedText{"First: Alpha story", "Second", "Only a description"}, out)
}

func TestExtractFeedRejectsGarbage(t *testing.T) {
	assert.Empty(t, ExtractFeed("definitely not a feed", 3))
}

func TestExtractReadable(t *testing.T) {
	page := `<html><head><title>Weather report</title></head><body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Weather report</h1>
<p>Today will be sunny across the region with light winds from the west and temperatures rising through the afternoon.</p>
<p>Tomorrow brings scattered showers in the north while the south stays dry and mild for most of the day.</p>
<p>The weekend outlook remains unsettled with a chance of thunderstorms late on Saturday evening.</p>
<p>Farmers are advised to finish harvesting before Saturday, and coastal areas should prepare for strong gusts along exposed beaches and harbours.</p>
<p>Next week a high pressure system should settle over the country and bring a long stretch of calm weather.</p>
</article>
</body></html>`

	out := ExtractReadable(page, "https://example.com/weather", 2)
	require.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), 2)
	assert.Contains(t, out.Joined(), "sunny")
	for _, fragment := range out {
		assert.NotContains(t, fragment, "<")
	}
}

func TestAggregatePreservesSourceOrder(t *testing.T) {
	// the first source is the slowest, so completion order is the reverse of declaration order
	a := newPageServer(t, 150*time.Millisecond, http.StatusOK, snippetPage("a1", "a2"))
	b := newPageServer(t, 75*time.Millisecond, http.StatusOK, snippetPage("b1", "b2"))
	c := newPageServer(t, 0, http.StatusOK, snippetPage("c1", "c2"))

	agg := NewAggregator([]types.Source{a.source("a"), b.source("b"), c.source("c")}, newTestFetcher(2*time.Second), nil)
	got := agg.Aggregate(context.Background(), "weather today")

	assert.Equal(t, "a1 a2 b1 b2 c1 c2", got)
	assert.Equal(t, "weather today", a.lastQuery.Load())
}

func TestAggregateSkipsFailedSources(t *testing.T) {
	good := newPageServer(t, 0, http.StatusOK, snippetPage("x1", "x2", "x3", "x4"))
	empty := newPageServer(t, 0, http.StatusOK, "<html><body>no results</body></html>")
	slow := newPageServer(t, 500*time.Millisecond, http.StatusOK, snippetPage("late"))

	agg := NewAggregator([]types.Source{slow.source("slow"), good.source("good"), empty.source("empty")}, newTestFetcher(50*time.Millisecond), nil)
	assert.Equal(t, "x1 x2 x3", agg.Aggregate(context.Background(), "q"))
}

func TestAggregateSingleSurvivingSource(t *testing.T) {
	down := newPageServer(t, 0, http.StatusOK, "")
	first, second := down.source("first"), down.source("second")
	down.Close()
	only := newPageServer(t, 0, http.StatusOK, snippetPage("only one"))

	agg := NewAggregator([]types.Source{first, second, only.source("third")}, newTestFetcher(time.Second), nil)
	assert.Equal(t, "only one", agg.Aggregate(context.Background(), "q"))
}

func TestAggregateAllFailing(t *testing.T) {
	ps := newPageServer(t, 0, http.StatusOK, "")
	sources := []types.Source{ps.source("a"), ps.source("b"), ps.source("c")}
	ps.Close()

	agg := NewAggregator(sources, newTestFetcher(time.Second), nil)
	assert.Equal(t, "", agg.Aggregate(context.Background(), "q"))
}

func TestAggregateNoSources(t *testing.T) {
	agg := NewAggregator(nil, nil, nil)
	assert.Equal(t, "", agg.Aggregate(context.Background(), "q"))
	assert.Empty(t, agg.Collect(context.Background(), "q"))
}

func TestAggregateIgnoresCallerCancellation(t *testing.T) {
	ps := newPageServer(t, 100*time.Millisecond, http.StatusOK, snippetPage("kept"))
	agg := NewAggregator([]types.Source{ps.source("a")}, newTestFetcher(time.Second), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "kept", agg.Aggregate(ctx, "q"))
}

func TestCollectIndexesBySource(t *testing.T) {
	a := newPageServer(t, 50*time.Millisecond, http.StatusOK, snippetPage("a"))
	b := newPageServer(t, 0, http.StatusOK, snippetPage("b1", "b2"))

	agg := NewAggregator([]types.Source{a.source("a"), b.source("b")}, newTestFetcher(time.Second), nil)
	results := agg.Collect(context.Background(), "q")

	require.Len(t, results, 2)
	assert.Equal(t, types.ExtractedText{"a"}, results[0])
	assert.Equal(t, types.ExtractedText{"b1", "b2"}, results[1])
}

func TestSourcesReturnsCopy(t *testing.T) {
	agg := NewAggregator([]types.Source{{Name: "a"}}, nil, nil)
	srcs := agg.Sources()
	srcs[0].Name = "changed"
	assert.Equal(t, "a", agg.Sources()[0].Name)
}
