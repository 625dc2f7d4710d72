package notify

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramQueueSize = 64

// telegramSender is the part of *tgbotapi.BotAPI the audit sink uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram forwards success notifications to an admin chat. Sends happen on a
// background goroutine started by Run; Notify never blocks.
type Telegram struct {
	sender telegramSender
	chatID int64
	queue  chan Notification
}

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("telegram audit channel authorized as %s", bot.Self.UserName)
	return newTelegram(bot, chatID), nil
}

func newTelegram(sender telegramSender, chatID int64) *Telegram {
	return &Telegram{
		sender: sender,
		chatID: chatID,
		queue:  make(chan Notification, telegramQueueSize),
	}
}

func (t *Telegram) Notify(n Notification) {
	if n.Level != LevelSuccess {
		return
	}
	select {
	case t.queue <- n:
	default:
		log.Printf("telegram audit queue full, dropping %q", n.Message)
	}
}

// Run drains the queue until ctx is done.
func (t *Telegram) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-t.queue:
			msg := tgbotapi.NewMessage(t.chatID, formatAudit(n))
			if _, err := t.sender.Send(msg); err != nil {
				log.Printf("telegram audit send failed: %v", err)
			}
		}
	}
}

func formatAudit(n Notification) string {
	var b strings.Builder
	b.WriteString("[HRMS] ")
	b.WriteString(n.Message)
	if n.Detail != "" {
		b.WriteString("\n")
		b.WriteString(n.Detail)
	}
	return b.String()
}
