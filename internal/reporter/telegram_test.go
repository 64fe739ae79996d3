package reporter

import (
	"errors"
	"testing"

	"go-intern-harvester/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failAt int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, msg)
	if f.failAt > 0 && len(f.sent) == f.failAt {
		return tgbotapi.Message{}, errors.New("429 too many requests")
	}
	return tgbotapi.Message{}, nil
}

func TestFormatPosting(t *testing.T) {
	tests := []struct {
		name     string
		posting  scraper.Posting
		contains []string
		excludes []string
	}{
		{
			name: "full posting",
			posting: scraper.Posting{
				Title:         scraper.StringPtr("R&D <인턴>"),
				OrganizerName: scraper.StringPtr("링커리어"),
				JobCategory:   scraper.StringPtr("개발"),
				Region:        scraper.StringPtr("서울"),
				StartDate:     scraper.StringPtr("2024-01-01"),
				EndDate:       scraper.StringPtr("2024-01-31"),
				HomepageURL:   "https://careers.example.com",
			},
			contains: []string{"R&amp;D &lt;인턴&gt;", "🏢 링커리어", "📍 서울", "📅 2024-01-01 ~ 2024-01-31", `href="https://careers.example.com"`},
		},
		{
			name:     "sparse posting",
			posting:  scraper.Posting{HomepageURL: "https://linkareer.com/activity/1"},
			contains: []string{"<b>N/A</b>", "🏢 N/A"},
			excludes: []string{"📍", "📅", "🛠"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPosting(tt.posting)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestSendPostings(t *testing.T) {
	f := &fakeSender{}
	r := &TelegramReporter{bot: f, chatID: 7}

	err := r.SendPostings([]scraper.Posting{{ID: 1}, {ID: 2}})
	require.NoError(t, err)

	require.Len(t, f.sent, 3)
	assert.Equal(t, int64(7), f.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, f.sent[0].ParseMode)
	assert.Contains(t, f.sent[2].Text, "2 new intern postings")
}

func TestSendPostings_Capped(t *testing.T) {
	f := &fakeSender{}
	r := &TelegramReporter{bot: f, chatID: 7}

	postings := make([]scraper.Posting, maxPostingsPerRun+5)
	require.NoError(t, r.SendPostings(postings))

	assert.Len(t, f.sent, maxPostingsPerRun+1)
}

func TestSendPostings_StopsOnError(t *testing.T) {
	f := &fakeSender{failAt: 2}
	r := &TelegramReporter{bot: f, chatID: 7}

	err := r.SendPostings([]scraper.Posting{{ID: 1}, {ID: 2}, {ID: 3}})

	assert.Error(t, err)
	assert.Len(t, f.sent, 2)
}
