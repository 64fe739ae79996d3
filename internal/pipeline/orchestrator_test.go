package pipeline

import (
	"context"
	"fmt"
	"testing"

	"go-intern-harvester/internal/browser/browsertest"
	"go-intern-harvester/internal/dedup"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/scraper"
	"go-intern-harvester/internal/scraper/linkareer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHistory struct {
	set    dedup.HistorySet
	scopes []dedup.Scope
}

func (h *staticHistory) Load(_ context.Context, scope dedup.Scope) dedup.HistorySet {
	h.scopes = append(h.scopes, scope)
	return h.set
}

type staticHarvester struct {
	links []string
}

func (h staticHarvester) Harvest(context.Context) scraper.HarvestResult {
	return scraper.HarvestResult{Links: h.links, Pages: 1, Outcome: scraper.OutcomeLastPage}
}

// fakeExtractor succeeds for every link except those in fail; links in
// failOnce fail only on their first attempt.
type fakeExtractor struct {
	fail     map[string]bool
	failOnce map[string]bool
	calls    []string
}

func (e *fakeExtractor) Extract(_ context.Context, link string) (*scraper.Posting, bool) {
	e.calls = append(e.calls, link)
	if e.fail[link] {
		return nil, false
	}
	if e.failOnce[link] {
		delete(e.failOnce, link)
		return nil, false
	}
	id, _ := linkareer.ResolveID(link)
	return &scraper.Posting{ID: id, HomepageURL: link}, true
}

func link(id int) string {
	return fmt.Sprintf("%s%d", linkareer.ActivityPrefix, id)
}

var scope = dedup.Scope{Bucket: "jobs", Prefix: "data/INTERN"}

func newOrchestrator(history HistoryLoader, links []string, ext scraper.Extractor, opts ...Option) *Orchestrator {
	return New(scope, history, staticHarvester{links: links}, ext, linkareer.ResolveID, logger.NewNop(), opts...)
}

func ids(postings []scraper.Posting) []int64 {
	out := make([]int64, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func TestRun_SkipsKnownPosting(t *testing.T) {
	history := &staticHistory{set: dedup.NewHistorySet(3)}
	ext := &fakeExtractor{}

	res, err := newOrchestrator(history, []string{link(1), link(2), link(3), link(4), link(5)}, ext).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 4, 5}, ids(res.Postings))
	assert.NotContains(t, ext.calls, link(3), "known postings must not be extracted")
	assert.Equal(t, 1, res.Stats.Known)
	assert.Equal(t, 4, res.Stats.New)
	assert.Equal(t, []dedup.Scope{scope}, history.scopes)
}

func TestRun_SecondRunIsEmpty(t *testing.T) {
	links := []string{link(1), link(2)}
	history := &staticHistory{set: dedup.NewHistorySet()}

	first, err := newOrchestrator(history, links, &fakeExtractor{}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Postings, 2)

	history.set = history.set.Union(dedup.NewHistorySet(ids(first.Postings)...))
	ext := &fakeExtractor{}
	second, err := newOrchestrator(history, links, ext).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, second.Postings)
	assert.Empty(t, ext.calls)
}

func TestRun_FailedExtractionDoesNotStopBatch(t *testing.T) {
	ext := &fakeExtractor{fail: map[string]bool{link(2): true}}

	res, err := newOrchestrator(&staticHistory{}, []string{link(1), link(2), link(3)}, ext).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, ids(res.Postings))
	assert.Equal(t, 1, res.Stats.Failed)
}

func TestRun_SkipsLinksWithoutIDAndDuplicates(t *testing.T) {
	ext := &fakeExtractor{}
	links := []string{link(1), "https://linkareer.com/activity/abc", link(1), "https://example.com/x", link(2)}

	res, err := newOrchestrator(&staticHistory{}, links, ext).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, ids(res.Postings))
	assert.Equal(t, []string{link(1), link(2)}, ext.calls)
	assert.Equal(t, 2, res.Stats.NoID)
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.Equal(t, 5, res.Stats.Harvested)
}

func TestRun_RetriesDuplicateOfFailedLink(t *testing.T) {
	ext := &fakeExtractor{failOnce: map[string]bool{link(1): true}}

	res, err := newOrchestrator(&staticHistory{}, []string{link(1), link(1), link(1)}, ext).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, ids(res.Postings))
	assert.Len(t, ext.calls, 2)
	assert.Equal(t, 1, res.Stats.Failed)
	assert.Equal(t, 1, res.Stats.Duplicates)
}

func TestRun_PauseBetweenExtractions(t *testing.T) {
	pauses := 0
	pause := func(context.Context) error { pauses++; return nil }

	_, err := newOrchestrator(&staticHistory{}, []string{link(1), link(2), link(3)}, &fakeExtractor{}, WithPause(pause)).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, pauses)
}

func TestRun_CancelledBetweenLinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pause := func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}

	res, err := newOrchestrator(&staticHistory{}, []string{link(1), link(2), link(3)}, &fakeExtractor{}, WithPause(pause)).
		Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{1}, ids(res.Postings))
}

// End to end over the scripted browser: harvester and extractor share one session.
func TestRun_WithScriptedBrowser(t *testing.T) {
	sel := linkareer.DefaultSelectors()
	s := browsertest.NewSession()

	listing := browsertest.NewPage()
	for _, id := range []int{1, 2, 3, 4, 5} {
		anchor := &browsertest.Element{Attrs: map[string]string{"href": fmt.Sprintf("/activity/%d", id)}}
		listing.Add(sel.Rows, &browsertest.Element{Children: map[string][]*browsertest.Element{
			sel.Cells: {{}, {Children: map[string][]*browsertest.Element{sel.DetailLink: {anchor}}}},
		}})
	}
	s.Route(linkareer.ListURL, listing)

	for _, id := range []int{1, 2, 4, 5} {
		s.Route(link(id), browsertest.NewPage().
			Add(sel.Title, &browsertest.Element{TextValue: fmt.Sprintf("공고 %d", id)}).
			Add(sel.Image, &browsertest.Element{Attrs: map[string]string{"src": "poster.png"}}))
	}

	o := New(scope,
		&staticHistory{set: dedup.NewHistorySet(3)},
		linkareer.NewHarvester(s, logger.NewNop()),
		linkareer.NewDetailExtractor(s, logger.NewNop()),
		linkareer.ResolveID,
		logger.NewNop(),
	)

	res, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Postings, 4)
	assert.Equal(t, []int64{1, 2, 4, 5}, ids(res.Postings))
	assert.Equal(t, "공고 4", *res.Postings[2].Title)
	assert.Equal(t, link(4), res.Postings[2].HomepageURL)
	assert.NotContains(t, s.Visited, link(3))
}
