package reporter

import (
	"fmt"
	"html"
	"strings"

	"go-intern-harvester/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxPostingsPerRun caps how many postings are announced individually;
// the rest are only counted in the summary.
const maxPostingsPerRun = 30

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramReporter struct {
	bot    sender
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendPosting(p scraper.Posting) error {
	return t.SendMessage(FormatPosting(p))
}

// SendPostings announces new postings followed by a one-line summary.
// It stops at the first delivery error.
func (t *TelegramReporter) SendPostings(postings []scraper.Posting) error {
	for i, p := range postings {
		if i == maxPostingsPerRun {
			break
		}
		if err := t.SendPosting(p); err != nil {
			return fmt.Errorf("send posting %d: %w", p.ID, err)
		}
	}
	return t.SendMessage(fmt.Sprintf("✅ %d new intern postings", len(postings)))
}

func (t *TelegramReporter) SendError(errReq error) error {
	return t.SendMessage(fmt.Sprintf("⚠️ <b>Intern harvester error</b>:\n%s", html.EscapeString(errReq.Error())))
}

// FormatPosting renders one posting as Telegram HTML.
func FormatPosting(p scraper.Posting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s</b>\n", esc(p.Title))
	fmt.Fprintf(&b, "🏢 %s\n", esc(p.OrganizerName))
	if p.JobCategory != nil {
		fmt.Fprintf(&b, "🛠 %s\n", esc(p.JobCategory))
	}
	if p.Region != nil {
		fmt.Fprintf(&b, "📍 %s\n", esc(p.Region))
	}
	if p.StartDate != nil || p.EndDate != nil {
		fmt.Fprintf(&b, "📅 %s ~ %s\n", esc(p.StartDate), esc(p.EndDate))
	}
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Apply</a>", html.EscapeString(p.HomepageURL))
	return b.String()
}

func esc(s *string) string {
	if s == nil {
		return "N/A"
	}
	return html.EscapeString(*s)
}
