// Package browser is the narrow browser-automation surface the harvester drives.
// The playwright adapter lives next to it; browsertest provides a scripted fake.
package browser

import (
	"context"
	"errors"
	"time"
)

// Faults every Session and Element implementation reports through.
// Callers classify with errors.Is.
var (
	ErrNotFound         = errors.New("element not found")
	ErrStale            = errors.New("element is stale")
	ErrClickIntercepted = errors.New("click intercepted")
	ErrTimeout          = errors.New("wait timed out")
)

// Session is one exclusively owned browser tab.
type Session interface {
	// Navigate loads url and blocks until the DOM is ready.
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector is present or the timeout elapses (ErrTimeout).
	WaitFor(selector string, timeout time.Duration) error
	// Find returns the first match or ErrNotFound.
	Find(selector string) (Element, error)
	// FindAll returns every match; no match is an empty slice, not an error.
	FindAll(selector string) ([]Element, error)
}

// Element is a handle on one DOM node.
type Element interface {
	Text() (string, error)
	// Attribute returns "" when the attribute is missing.
	Attribute(name string) (string, error)
	Disabled() (bool, error)
	Click() error
	Find(selector string) (Element, error)
	FindAll(selector string) ([]Element, error)
}
