package linkareer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-intern-harvester/internal/browser"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/scraper"
)

// State is a node of the pagination state machine.
//
//	ON_LISTING_PAGE(n) --rows read--> ADVANCE_NUMBERED
//	ADVANCE_NUMBERED   --button n+1 clicked--> ON_LISTING_PAGE(n+1)
//	                   --no button--> ADVANCE_ARROW
//	ADVANCE_ARROW      --arrow clicked--> ON_LISTING_PAGE(n+1)
//	                   --disabled or absent--> DONE
//	any state          --click intercepted or fault--> DONE
type State string

const (
	StateListingPage     State = "ON_LISTING_PAGE"
	StateAdvanceNumbered State = "ADVANCE_NUMBERED"
	StateAdvanceArrow    State = "ADVANCE_ARROW"
	StateDone            State = "DONE"
)

const defaultWaitTimeout = 10 * time.Second

// Harvester collects detail links from every reachable listing page.
type Harvester struct {
	session     browser.Session
	log         logger.Logger
	sel         Selectors
	listURL     string
	baseURL     string
	waitTimeout time.Duration
}

type HarvesterOption func(*Harvester)

func WithListURL(url string) HarvesterOption {
	return func(h *Harvester) { h.listURL = url }
}

func WithHarvestTimeout(d time.Duration) HarvesterOption {
	return func(h *Harvester) {
		if d > 0 {
			h.waitTimeout = d
		}
	}
}

func WithHarvestSelectors(sel Selectors) HarvesterOption {
	return func(h *Harvester) { h.sel = sel }
}

func NewHarvester(session browser.Session, log logger.Logger, opts ...HarvesterOption) *Harvester {
	h := &Harvester{
		session:     session,
		log:         log,
		sel:         DefaultSelectors(),
		listURL:     ListURL,
		baseURL:     BaseURL,
		waitTimeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// walk is the mutable state of one Harvest call.
type walk struct {
	state   State
	page    int
	pages   int
	links   []string
	outcome scraper.Outcome
}

func (w *walk) finish(outcome scraper.Outcome) State {
	w.outcome = outcome
	return StateDone
}

// Harvest walks the pagination from page 1 until no further page is reachable.
// It never fails: whatever was collected before a fault is returned.
func (h *Harvester) Harvest(ctx context.Context) (res scraper.HarvestResult) {
	w := &walk{state: StateListingPage, page: 1}

	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Harvest aborted by panic",
				logger.Any("panic", r), logger.Int("page", w.page), logger.Int("links", len(w.links)))
			w.finish(scraper.OutcomeFault)
		}
		res = scraper.HarvestResult{Links: w.links, Pages: w.pages, Outcome: w.outcome}
		h.log.Info("Harvest finished",
			logger.String("outcome", string(res.Outcome)),
			logger.Int("pages", res.Pages),
			logger.Int("links", len(res.Links)))
	}()

	if err := h.session.Navigate(ctx, h.listURL); err != nil {
		h.log.Error("Could not open listing", logger.String("url", h.listURL), logger.Error(err))
		w.finish(scraper.OutcomeFault)
		return
	}

	for w.state != StateDone {
		if ctx.Err() != nil {
			h.log.Warn("Harvest cancelled", logger.Int("page", w.page))
			w.state = w.finish(scraper.OutcomeCancelled)
			break
		}
		w.state = h.step(w)
	}
	return
}

func (h *Harvester) step(w *walk) State {
	switch w.state {
	case StateListingPage:
		return h.collect(w)
	case StateAdvanceNumbered:
		return h.advanceNumbered(w)
	case StateAdvanceArrow:
		return h.advanceArrow(w)
	default:
		return w.finish(scraper.OutcomeFault)
	}
}

// collect waits for the rows of page w.page and reads one link per row.
func (h *Harvester) collect(w *walk) State {
	log := h.log.With(logger.Int("page", w.page))

	if err := h.session.WaitFor(h.sel.Rows, h.waitTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			log.Warn("Listing rows did not render", logger.Error(err))
			return w.finish(scraper.OutcomeWaitTimeout)
		}
		log.Error("Waiting for listing rows failed", logger.Error(err))
		return w.finish(scraper.OutcomeFault)
	}

	rows, err := h.session.FindAll(h.sel.Rows)
	if err != nil {
		log.Error("Reading listing rows failed", logger.Error(err))
		return w.finish(scraper.OutcomeFault)
	}

	found := 0
	for i, row := range rows {
		link, err := h.readRow(row)
		switch {
		case errors.Is(err, browser.ErrStale):
			log.Warn("Stale row skipped", logger.Int("row", i))
			continue
		case err != nil:
			log.Debug("Row without detail link skipped", logger.Int("row", i), logger.Error(err))
			continue
		case link == "":
			continue
		}
		w.links = append(w.links, link)
		found++
	}
	w.pages++
	log.Info("Listing page read", logger.Int("rows", len(rows)), logger.Int("links", found))

	return StateAdvanceNumbered
}

func (h *Harvester) readRow(row browser.Element) (string, error) {
	cells, err := row.FindAll(h.sel.Cells)
	if err != nil {
		return "", err
	}
	if len(cells) < 2 {
		return "", nil
	}
	anchor, err := cells[1].Find(h.sel.DetailLink)
	if err != nil {
		return "", err
	}
	href, err := anchor.Attribute("href")
	if err != nil {
		return "", err
	}
	return h.absolute(href), nil
}

func (h *Harvester) absolute(href string) string {
	if strings.HasPrefix(href, "/") {
		return h.baseURL + href
	}
	return href
}

func (h *Harvester) advanceNumbered(w *walk) State {
	button, err := h.session.Find(h.sel.pageButton(w.page + 1))
	if errors.Is(err, browser.ErrNotFound) {
		return StateAdvanceArrow
	}
	if err != nil {
		h.log.Error("Looking up page button failed", logger.Int("page", w.page), logger.Error(err))
		return w.finish(scraper.OutcomeFault)
	}
	return h.click(w, button, "page button")
}

func (h *Harvester) advanceArrow(w *walk) State {
	arrow, err := h.session.Find(h.sel.NextArrow)
	if errors.Is(err, browser.ErrNotFound) {
		h.log.Info("No pagination control left", logger.Int("page", w.page))
		return w.finish(scraper.OutcomeNoControl)
	}
	if err != nil {
		h.log.Error("Looking up next arrow failed", logger.Int("page", w.page), logger.Error(err))
		return w.finish(scraper.OutcomeFault)
	}

	disabled, err := arrow.Disabled()
	if err != nil {
		h.log.Error("Reading next arrow state failed", logger.Int("page", w.page), logger.Error(err))
		return w.finish(scraper.OutcomeFault)
	}
	if disabled {
		h.log.Info("Reached last page", logger.Int("page", w.page))
		return w.finish(scraper.OutcomeLastPage)
	}
	return h.click(w, arrow, "next arrow")
}

func (h *Harvester) click(w *walk, control browser.Element, name string) State {
	if err := control.Click(); err != nil {
		if errors.Is(err, browser.ErrClickIntercepted) {
			h.log.Warn(fmt.Sprintf("Click on %s intercepted", name), logger.Int("page", w.page), logger.Error(err))
			return w.finish(scraper.OutcomeBlocked)
		}
		h.log.Error(fmt.Sprintf("Click on %s failed", name), logger.Int("page", w.page), logger.Error(err))
		return w.finish(scraper.OutcomeFault)
	}
	w.page++
	return StateListingPage
}
