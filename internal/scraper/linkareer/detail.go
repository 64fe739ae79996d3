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

	"golang.org/x/text/unicode/norm"
)

var (
	ErrNoIdentifier = errors.New("link has no posting id")
	ErrMissingImage = errors.New("recruit image not found")
)

// homepagePlaceholders are values the site shows when no homepage is set.
var homepagePlaceholders = map[string]bool{"": true, "-": true}

// DetailExtractor reads one posting from its detail page.
type DetailExtractor struct {
	session     browser.Session
	log         logger.Logger
	sel         Selectors
	waitTimeout time.Duration
	shots       *browser.ScreenshotDebugger
}

type DetailOption func(*DetailExtractor)

func WithDetailTimeout(d time.Duration) DetailOption {
	return func(e *DetailExtractor) {
		if d > 0 {
			e.waitTimeout = d
		}
	}
}

func WithDetailSelectors(sel Selectors) DetailOption {
	return func(e *DetailExtractor) { e.sel = sel }
}

// WithScreenshots captures the page whenever an extraction is dropped.
func WithScreenshots(shots *browser.ScreenshotDebugger) DetailOption {
	return func(e *DetailExtractor) { e.shots = shots }
}

func NewDetailExtractor(session browser.Session, log logger.Logger, opts ...DetailOption) *DetailExtractor {
	e := &DetailExtractor{
		session:     session,
		log:         log,
		sel:         DefaultSelectors(),
		waitTimeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails past its boundary: any fault is logged and reported as ok=false.
func (e *DetailExtractor) Extract(ctx context.Context, link string) (posting *scraper.Posting, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Detail page aborted by panic", logger.String("link", link), logger.Any("panic", r))
			posting, ok = nil, false
		}
	}()

	posting, err := e.extract(ctx, link)
	if err != nil {
		e.log.Warn("Detail page skipped", logger.String("link", link), logger.Error(err))
		if !errors.Is(err, ErrNoIdentifier) {
			e.shots.Capture(e.session, "detail-"+strings.TrimPrefix(link, ActivityPrefix))
		}
		return nil, false
	}
	return posting, true
}

func (e *DetailExtractor) extract(ctx context.Context, link string) (*scraper.Posting, error) {
	id, ok := ResolveID(link)
	if !ok {
		return nil, ErrNoIdentifier
	}

	if err := e.session.Navigate(ctx, link); err != nil {
		return nil, err
	}
	if err := e.session.WaitFor(e.sel.Title, e.waitTimeout); err != nil {
		return nil, err
	}

	image, err := e.session.Find(e.sel.Image)
	if errors.Is(err, browser.ErrNotFound) {
		return nil, ErrMissingImage
	}
	if err != nil {
		return nil, fmt.Errorf("find image: %w", err)
	}
	src, err := image.Attribute("src")
	if err != nil {
		return nil, fmt.Errorf("read image src: %w", err)
	}

	posting := &scraper.Posting{
		ID:             id,
		Title:          e.text(e.sel.Title),
		OrganizerName:  e.text(e.sel.Organizer),
		ImageURL:       src,
		EnterpriseType: e.text(e.sel.field(LabelEnterpriseType)),
		JobCategory:    e.text(e.sel.field(LabelJobCategory)),
		Region:         e.text(e.sel.field(LabelRegion)),
	}
	posting.StartDate, posting.EndDate = ParsePeriod(e.text(e.sel.field(LabelPeriod)))
	posting.HomepageURL = HomepageOrLink(e.text(e.sel.field(LabelHomepage)), link)

	e.log.Debug("Detail page read", logger.Int64("id", id), logger.String("title", deref(posting.Title)))
	return posting, nil
}

// text reads one optional field; any failure means the field is absent.
func (e *DetailExtractor) text(selector string) *string {
	el, err := e.session.Find(selector)
	if err != nil {
		if !errors.Is(err, browser.ErrNotFound) {
			e.log.Debug("Field read failed", logger.String("selector", selector), logger.Error(err))
		}
		return nil
	}
	value, err := el.Text()
	if err != nil {
		e.log.Debug("Field text failed", logger.String("selector", selector), logger.Error(err))
		return nil
	}
	value = normalizeText(value)
	return &value
}

// ParsePeriod splits the application period cell into start and end dates.
// The cell must hold exactly two lines, tagged with the start and end markers;
// anything else leaves both dates absent.
func ParsePeriod(raw *string) (start, end *string) {
	if raw == nil {
		return nil, nil
	}
	lines := strings.Split(*raw, "\n")
	if len(lines) != 2 {
		return nil, nil
	}
	for _, line := range lines {
		switch {
		case strings.Contains(line, startMarker):
			v := strings.TrimSpace(strings.ReplaceAll(line, startMarker, ""))
			start = &v
		case strings.Contains(line, endMarker):
			v := strings.TrimSpace(strings.ReplaceAll(line, endMarker, ""))
			end = &v
		}
	}
	return start, end
}

// HomepageOrLink falls back to the listing link when the homepage is missing
// or a placeholder.
func HomepageOrLink(raw *string, link string) string {
	if raw == nil || homepagePlaceholders[strings.TrimSpace(*raw)] {
		return link
	}
	return *raw
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
