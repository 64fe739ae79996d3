package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const defaultClickTimeout = 5 * time.Second

// PageSession adapts a playwright.Page to Session.
type PageSession struct {
	page       playwright.Page
	navTimeout time.Duration
}

func NewPageSession(page playwright.Page, navTimeout time.Duration) *PageSession {
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	return &PageSession{page: page, navTimeout: navTimeout}
}

func (s *PageSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.navTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("navigate %s: %w", url, classify(err))
	}
	return nil
}

func (s *PageSession) WaitFor(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, classify(err))
	}
	return nil
}

func (s *PageSession) Find(selector string) (Element, error) {
	h, err := s.page.QuerySelector(selector)
	return wrapHandle(h, selector, err)
}

func (s *PageSession) FindAll(selector string) ([]Element, error) {
	hs, err := s.page.QuerySelectorAll(selector)
	return wrapHandles(hs, err)
}

// Screenshot saves a full-page PNG to path.
func (s *PageSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

type handle struct {
	h playwright.ElementHandle
}

func wrapHandle(h playwright.ElementHandle, selector string, err error) (Element, error) {
	if err != nil {
		return nil, classify(err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return &handle{h: h}, nil
}

func wrapHandles(hs []playwright.ElementHandle, err error) ([]Element, error) {
	if err != nil {
		return nil, classify(err)
	}
	out := make([]Element, 0, len(hs))
	for _, h := range hs {
		out = append(out, &handle{h: h})
	}
	return out, nil
}

func (e *handle) Text() (string, error) {
	text, err := e.h.InnerText()
	return text, classify(err)
}

func (e *handle) Attribute(name string) (string, error) {
	v, err := e.h.GetAttribute(name)
	return v, classify(err)
}

func (e *handle) Disabled() (bool, error) {
	v, err := e.h.IsDisabled()
	return v, classify(err)
}

func (e *handle) Click() error {
	return classify(e.h.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(float64(defaultClickTimeout.Milliseconds())),
	}))
}

func (e *handle) Find(selector string) (Element, error) {
	h, err := e.h.QuerySelector(selector)
	return wrapHandle(h, selector, err)
}

func (e *handle) FindAll(selector string) ([]Element, error) {
	hs, err := e.h.QuerySelectorAll(selector)
	return wrapHandles(hs, err)
}

// classify maps playwright failures onto the package sentinels, keeping the
// original message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "intercepts pointer events"):
		return fmt.Errorf("%w: %v", ErrClickIntercepted, err)
	case strings.Contains(msg, "not attached to the DOM"), strings.Contains(msg, "Element is detached"):
		return fmt.Errorf("%w: %v", ErrStale, err)
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
