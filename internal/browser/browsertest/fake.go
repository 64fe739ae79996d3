// Package browsertest provides a scripted in-memory browser.Session.
//
// Pages are keyed by URL; each page maps exact selector strings to elements.
// Clicking an element runs its OnClick hook, which usually calls Show to swap
// the current page, mimicking client-side pagination.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-intern-harvester/internal/browser"
)

// Page is one rendered document.
type Page struct {
	Elements map[string][]*Element
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{Elements: make(map[string][]*Element)}
}

// Add registers elements under selector and returns the page for chaining.
func (p *Page) Add(selector string, els ...*Element) *Page {
	p.Elements[selector] = append(p.Elements[selector], els...)
	return p
}

// Element is a scripted DOM node.
type Element struct {
	TextValue  string
	Attrs      map[string]string
	IsDisabled bool
	// Stale makes every read return browser.ErrStale.
	Stale    bool
	OnClick  func() error
	Children map[string][]*Element
}

// Session is a fake browser.Session. Safe for use from one goroutine at a time,
// like the real one.
type Session struct {
	mu      sync.Mutex
	pages   map[string]*Page
	current *Page

	// NavigateErr fails navigation to specific URLs.
	NavigateErr map[string]error
	// Visited records every Navigate call in order.
	Visited []string
}

// NewSession returns a session with no pages registered.
func NewSession() *Session {
	return &Session{
		pages:       make(map[string]*Page),
		NavigateErr: make(map[string]error),
	}
}

// Route registers the page served for url.
func (s *Session) Route(url string, page *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = page
}

// Show replaces the current document without a navigation.
func (s *Session) Show(page *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = page
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Visited = append(s.Visited, url)
	if err, ok := s.NavigateErr[url]; ok {
		return err
	}
	page, ok := s.pages[url]
	if !ok {
		return fmt.Errorf("navigate %s: %w", url, browser.ErrTimeout)
	}
	s.current = page
	return nil
}

func (s *Session) WaitFor(selector string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || len(s.current.Elements[selector]) == 0 {
		return fmt.Errorf("wait for %q: %w", selector, browser.ErrTimeout)
	}
	return nil
}

func (s *Session) Find(selector string) (browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return first(s.current.Elements[selector], selector)
}

func (s *Session) FindAll(selector string) ([]browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, nil
	}
	return all(s.current.Elements[selector]), nil
}

func first(els []*Element, selector string) (browser.Element, error) {
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return els[0], nil
}

func all(els []*Element) []browser.Element {
	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out
}

func (e *Element) Text() (string, error) {
	if e.Stale {
		return "", browser.ErrStale
	}
	return e.TextValue, nil
}

func (e *Element) Attribute(name string) (string, error) {
	if e.Stale {
		return "", browser.ErrStale
	}
	return e.Attrs[name], nil
}

func (e *Element) Disabled() (bool, error) {
	if e.Stale {
		return false, browser.ErrStale
	}
	return e.IsDisabled, nil
}

func (e *Element) Click() error {
	if e.Stale {
		return browser.ErrStale
	}
	if e.OnClick == nil {
		return nil
	}
	return e.OnClick()
}

func (e *Element) Find(selector string) (browser.Element, error) {
	if e.Stale {
		return nil, browser.ErrStale
	}
	return first(e.Children[selector], selector)
}

func (e *Element) FindAll(selector string) ([]browser.Element, error) {
	if e.Stale {
		return nil, browser.ErrStale
	}
	return all(e.Children[selector]), nil
}
