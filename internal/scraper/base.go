// Define the record produced by detail extraction
// and the interfaces the sync pipeline drives

package scraper

import (
	"context"
)

// Posting is one intern posting. Optional fields are nil when the detail page
// did not render them; a posting with only ID, ImageURL and HomepageURL set is
// still valid. JSON names match the persisted data files.
type Posting struct {
	ID             int64   `json:"linkareer_id"`
	Title          *string `json:"title"`
	OrganizerName  *string `json:"organizer_name"`
	ImageURL       string  `json:"img_url"`
	EnterpriseType *string `json:"enterprise_type"`
	JobCategory    *string `json:"job_category"`
	Region         *string `json:"region"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	HomepageURL    string  `json:"homepage_url"`
}

// Outcome says why a harvest stopped.
type Outcome string

const (
	OutcomeLastPage    Outcome = "last_page"
	OutcomeNoControl   Outcome = "no_control"
	OutcomeBlocked     Outcome = "blocked"
	OutcomeWaitTimeout Outcome = "wait_timeout"
	OutcomeFault       Outcome = "fault"
	OutcomeCancelled   Outcome = "cancelled"
)

// HarvestResult is the best-effort link sequence of one pagination walk.
// Links may contain duplicates.
type HarvestResult struct {
	Links   []string
	Pages   int
	Outcome Outcome
}

// Harvester walks the listing pagination.
type Harvester interface {
	Harvest(ctx context.Context) HarvestResult
}

// Extractor turns one listing link into a Posting. ok is false when the
// detail page could not be read; the failure has already been logged.
type Extractor interface {
	Extract(ctx context.Context, link string) (posting *Posting, ok bool)
}

// IDResolver derives the stable identifier of a listing link.
type IDResolver func(link string) (int64, bool)

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
