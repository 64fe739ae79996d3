// Command probe checks the live site against the current selectors without
// touching storage: it walks the listing, or extracts a single detail page.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go-intern-harvester/internal/browser"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/scraper/linkareer"

	"github.com/playwright-community/playwright-go"
)

func main() {
	detailURL := flag.String("url", "", "extract this detail page instead of walking the listing")
	cookiesPath := flag.String("cookies", "", "optional cookie JSON file")
	headful := flag.Bool("headful", false, "show the browser window")
	shotDir := flag.String("screenshots", "", "directory for failure screenshots")
	flag.Parse()

	l, err := logger.New("debug", true)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pm, err := browser.NewPlaywright(ctx, browser.Options{Headless: !*headful, NavTimeout: 30 * time.Second})
	if err != nil {
		log.Fatalf("❌ Failed to start Playwright: %v", err)
	}
	defer pm.Close()

	var cookies []playwright.OptionalCookie
	if *cookiesPath != "" {
		if cookies, err = browser.LoadCookies(*cookiesPath); err != nil {
			log.Fatalf("❌ Failed to load cookies: %v", err)
		}
		l.Info("Cookies loaded", logger.Int("count", len(cookies)))
	}

	session, release, err := pm.NewSession(cookies)
	if err != nil {
		log.Fatalf("❌ Failed to open browser session: %v", err)
	}
	defer release()

	shots, err := browser.NewScreenshotDebugger(*shotDir, l)
	if err != nil {
		log.Fatalf("❌ Failed to prepare screenshot dir: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *detailURL != "" {
		ex := linkareer.NewDetailExtractor(session, l, linkareer.WithScreenshots(shots))
		p, ok := ex.Extract(ctx, *detailURL)
		if !ok {
			log.Fatalf("❌ No record extracted from %s", *detailURL)
		}
		_ = enc.Encode(p)
		return
	}

	res := linkareer.NewHarvester(session, l).Harvest(ctx)
	for _, link := range res.Links {
		id := "-"
		if n, ok := linkareer.ResolveID(link); ok {
			id = fmt.Sprint(n)
		}
		fmt.Printf("%-8s %s\n", id, link)
	}
	l.Info("Listing walked",
		logger.String("outcome", string(res.Outcome)),
		logger.Int("pages", res.Pages),
		logger.Int("links", len(res.Links)))
}
