package linkareer

import (
	"context"
	"fmt"
	"testing"

	"go-intern-harvester/internal/browser"
	"go-intern-harvester/internal/browser/browsertest"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/scraper"

	"github.com/stretchr/testify/assert"
)

var sel = DefaultSelectors()

func listingRow(href string) *browsertest.Element {
	anchor := &browsertest.Element{Attrs: map[string]string{"href": href}}
	return &browsertest.Element{Children: map[string][]*browsertest.Element{
		sel.Cells: {
			{TextValue: "1"},
			{Children: map[string][]*browsertest.Element{sel.DetailLink: {anchor}}},
		},
	}}
}

func listingPage(ids ...int) *browsertest.Page {
	page := browsertest.NewPage()
	for _, id := range ids {
		page.Add(sel.Rows, listingRow(fmt.Sprintf("/activity/%d", id)))
	}
	return page
}

func links(ids ...int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, fmt.Sprintf("%s%d", ActivityPrefix, id))
	}
	return out
}

// pageButton wires a numbered control on from that shows to when clicked.
func pageButton(s *browsertest.Session, from *browsertest.Page, n int, to *browsertest.Page) {
	from.Add(sel.pageButton(n), &browsertest.Element{
		TextValue: fmt.Sprint(n),
		OnClick:   func() error { s.Show(to); return nil },
	})
}

func nextArrow(s *browsertest.Session, from *browsertest.Page, to *browsertest.Page, disabled bool) {
	from.Add(sel.NextArrow, &browsertest.Element{
		IsDisabled: disabled,
		OnClick:    func() error { s.Show(to); return nil },
	})
}

func newHarvester(s browser.Session) *Harvester {
	return NewHarvester(s, logger.NewNop())
}

func TestHarvest_NumberedPagesThenDisabledArrow(t *testing.T) {
	s := browsertest.NewSession()
	p1, p2, p3 := listingPage(1, 2), listingPage(3, 4), listingPage(5)
	s.Route(ListURL, p1)
	pageButton(s, p1, 2, p2)
	pageButton(s, p2, 3, p3)
	nextArrow(s, p3, nil, true)

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1, 2, 3, 4, 5), res.Links)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, scraper.OutcomeLastPage, res.Outcome)
}

func TestHarvest_ArrowFallback(t *testing.T) {
	s := browsertest.NewSession()
	p1, p2 := listingPage(10), listingPage(11)
	s.Route(ListURL, p1)
	nextArrow(s, p1, p2, false)

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(10, 11), res.Links)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, scraper.OutcomeNoControl, res.Outcome)
}

func TestHarvest_ClickInterceptedKeepsLinks(t *testing.T) {
	s := browsertest.NewSession()
	p1 := listingPage(1, 2)
	s.Route(ListURL, p1)
	p1.Add(sel.pageButton(2), &browsertest.Element{
		OnClick: func() error { return fmt.Errorf("overlay: %w", browser.ErrClickIntercepted) },
	})

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1, 2), res.Links)
	assert.Equal(t, scraper.OutcomeBlocked, res.Outcome)
}

func TestHarvest_ArrowClickIntercepted(t *testing.T) {
	s := browsertest.NewSession()
	p1 := listingPage(1)
	s.Route(ListURL, p1)
	p1.Add(sel.NextArrow, &browsertest.Element{
		OnClick: func() error { return browser.ErrClickIntercepted },
	})

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1), res.Links)
	assert.Equal(t, scraper.OutcomeBlocked, res.Outcome)
}

func TestHarvest_StaleAndBrokenRowsSkipped(t *testing.T) {
	s := browsertest.NewSession()
	p1 := listingPage(1)
	p1.Add(sel.Rows,
		&browsertest.Element{Stale: true},
		&browsertest.Element{Children: map[string][]*browsertest.Element{sel.Cells: {{TextValue: "only one"}}}},
		&browsertest.Element{Children: map[string][]*browsertest.Element{sel.Cells: {{}, {}}}},
		listingRow("https://linkareer.com/activity/2"),
	)
	s.Route(ListURL, p1)

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1, 2), res.Links)
	assert.Equal(t, scraper.OutcomeNoControl, res.Outcome)
}

func TestHarvest_DuplicatesAreKept(t *testing.T) {
	s := browsertest.NewSession()
	p1, p2 := listingPage(1, 2), listingPage(2, 3)
	s.Route(ListURL, p1)
	pageButton(s, p1, 2, p2)

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1, 2, 2, 3), res.Links)
}

func TestHarvest_NavigationFailure(t *testing.T) {
	s := browsertest.NewSession()
	s.NavigateErr[ListURL] = browser.ErrTimeout

	res := newHarvester(s).Harvest(context.Background())

	assert.Empty(t, res.Links)
	assert.Equal(t, scraper.OutcomeFault, res.Outcome)
}

func TestHarvest_RowsNeverRenderOnNextPage(t *testing.T) {
	s := browsertest.NewSession()
	p1 := listingPage(1)
	s.Route(ListURL, p1)
	pageButton(s, p1, 2, browsertest.NewPage())

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1), res.Links)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, scraper.OutcomeWaitTimeout, res.Outcome)
}

func TestHarvest_PanicKeepsLinks(t *testing.T) {
	s := browsertest.NewSession()
	p1 := listingPage(1, 2)
	s.Route(ListURL, p1)
	p1.Add(sel.pageButton(2), &browsertest.Element{
		OnClick: func() error { panic("driver crashed") },
	})

	res := newHarvester(s).Harvest(context.Background())

	assert.Equal(t, links(1, 2), res.Links)
	assert.Equal(t, scraper.OutcomeFault, res.Outcome)
}

func TestHarvest_CancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := browsertest.NewSession()
	p1, p2 := listingPage(1), listingPage(2)
	s.Route(ListURL, p1)
	p1.Add(sel.pageButton(2), &browsertest.Element{
		OnClick: func() error { s.Show(p2); cancel(); return nil },
	})

	res := newHarvester(s).Harvest(ctx)

	assert.Equal(t, links(1), res.Links)
	assert.Equal(t, scraper.OutcomeCancelled, res.Outcome)
}

func TestHarvest_CustomListURL(t *testing.T) {
	s := browsertest.NewSession()
	s.Route("https://linkareer.com/list/intern?page=1", listingPage(7))

	res := NewHarvester(s, logger.NewNop(), WithListURL("https://linkareer.com/list/intern?page=1")).
		Harvest(context.Background())

	assert.Equal(t, links(7), res.Links)
}
