package services

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"digi3/internal/models"
)

// Notifier tells users about task changes that concern them.
type Notifier interface {
	TaskAssigned(assignee *models.User, task *models.Task)
	TaskStatusChanged(assignee *models.User, task *models.Task)
}

type nopNotifier struct{}

func (nopNotifier) TaskAssigned(*models.User, *models.Task)      {}
func (nopNotifier) TaskStatusChanged(*models.User, *models.Task) {}

// NopNotifier drops every notification.
func NopNotifier() Notifier { return nopNotifier{} }

type TelegramService struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramService connects the bot. An empty token yields a notifier that
// does nothing.
func NewTelegramService(botToken string) (Notifier, error) {
	if botToken == "" {
		return NopNotifier(), nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot}, nil
}

func (t *TelegramService) TaskAssigned(assignee *models.User, task *models.Task) {
	t.send(assignee, formatTask("📌 Nouvelle tâche assignée", task))
}

func (t *TelegramService) TaskStatusChanged(assignee *models.User, task *models.Task) {
	t.send(assignee, formatTask("🔁 Statut changé : "+string(task.Status), task))
}

func (t *TelegramService) send(u *models.User, text string) {
	if u == nil || u.TelegramChatID == nil || *u.TelegramChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(*u.TelegramChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.WithField("user_id", u.ID).Printf("[tg][send][err] %v", err)
	}
}

func formatTask(prefix string, t *models.Task) string {
	due := "-"
	if t.TargetDate != nil {
		due = t.TargetDate.Format("2006-01-02")
	}
	return prefix + "\n" +
		"• <b>" + html.EscapeString(t.Name) + "</b>\n" +
		"• Statut : <code>" + string(t.Status) + "</code>\n" +
		"• Priorité : <code>" + string(t.Priority) + "</code>\n" +
		"• Échéance : <code>" + due + "</code>"
}
