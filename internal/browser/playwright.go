package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options controls how the Chromium instance is launched.
type Options struct {
	Headless   bool
	NavTimeout time.Duration
	UserAgent  string
}

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// NewPlaywright starts the playwright driver and launches Chromium.
func NewPlaywright(ctx context.Context, opts Options) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: browser, opts: opts}, nil
}

// NewSession opens a fresh browser context with the given cookies and wraps its page.
// The returned close func releases the context.
func (pm *PlaywrightManager) NewSession(cookies []playwright.OptionalCookie) (Session, func() error, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Locale: playwright.String("ko-KR"),
	}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}

	browserCtx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			_ = browserCtx.Close()
			return nil, nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		return nil, nil, fmt.Errorf("could not create page: %w", err)
	}

	return NewPageSession(page, pm.opts.NavTimeout), func() error { return browserCtx.Close() }, nil
}

func (pm *PlaywrightManager) Close() error {
	if err := pm.browser.Close(); err != nil {
		_ = pm.pw.Stop()
		return fmt.Errorf("could not close browser: %w", err)
	}
	return pm.pw.Stop()
}
