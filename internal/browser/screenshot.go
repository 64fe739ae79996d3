package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go-intern-harvester/internal/logger"
)

// Screenshotter is implemented by sessions that can dump the current page.
type Screenshotter interface {
	Screenshot(path string) error
}

// ScreenshotDebugger saves debug screenshots when extraction goes wrong.
// A nil *ScreenshotDebugger is valid and does nothing.
type ScreenshotDebugger struct {
	outputDir string
	log       logger.Logger
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func NewScreenshotDebugger(dir string, log logger.Logger) (*ScreenshotDebugger, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create screenshot dir: %w", err)
	}
	return &ScreenshotDebugger{outputDir: dir, log: log}, nil
}

// Capture screenshots session if it supports it. Failures are logged only.
func (s *ScreenshotDebugger) Capture(session Session, name string) {
	if s == nil {
		return
	}
	shooter, ok := session.(Screenshotter)
	if !ok {
		return
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", unsafeName.ReplaceAllString(name, "_"), timestamp)
	path := filepath.Join(s.outputDir, filename)

	if err := shooter.Screenshot(path); err != nil {
		s.log.Warn("Failed to capture screenshot", logger.String("path", path), logger.Error(err))
		return
	}
	s.log.Info("Screenshot saved", logger.String("path", path))
}
