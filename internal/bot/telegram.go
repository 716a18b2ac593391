package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/approval"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

const (
	alertRetryAttempts = 3
	alertRetryDelay    = 2 * time.Second
)

type telegram struct {
	api  *tgbotapi.BotAPI
	cfg  Config
	deps Deps
}

func newTelegram(cfg Config, deps Deps) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}

	logger.Info("telegram bot initialized", "account", api.Self.UserName)
	return &telegram{api: api, cfg: cfg, deps: deps}, nil
}

func (t *telegram) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			logger.Info("telegram bot stopped")
			return ctx.Err()
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				go t.handleCallback(update.CallbackQuery)
			case update.Message != nil:
				t.handleMessage(update.Message)
			}
		}
	}
}

func (t *telegram) handleMessage(msg *tgbotapi.Message) {
	if t.cfg.AdminChatID != 0 && msg.Chat.ID != t.cfg.AdminChatID {
		logger.Warn("message from unexpected chat ignored", "chatID", msg.Chat.ID)
		return
	}

	switch msg.Command() {
	case "start":
		t.reply(msg.Chat.ID, "Door security bot ready. I will notify you when someone is at the door.")
	case "status":
		if t.deps.Status != nil {
			t.reply(msg.Chat.ID, t.deps.Status())
		}
	}
}

func (t *telegram) reply(chatID int64, text string) {
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Error("telegram reply failed", "error", err)
	}
}

func (t *telegram) Send(message string) error {
	_, err := t.api.Send(tgbotapi.NewMessage(t.cfg.AdminChatID, message))
	if err != nil {
		logger.Error("telegram send failed", "error", err)
	}
	return err
}

// SendUnknownFaceAlert posts the evidence photo with approval buttons,
// retrying with backoff. When the photo cannot be delivered at all, a
// text-only notice goes out instead.
func (t *telegram) SendUnknownFaceAlert(evidencePath string) error {
	info, err := os.Stat(evidencePath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("evidence file %s unusable: %w", evidencePath, err)
	}

	id := t.deps.Approvals.Add(evidencePath)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Allow Always", "allow_always:"+id),
			tgbotapi.NewInlineKeyboardButtonData("Allow Once", "allow_once:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Deny", "deny:"+id),
		),
	)

	photo := tgbotapi.NewPhoto(t.cfg.AdminChatID, tgbotapi.FilePath(evidencePath))
	photo.Caption = "Unknown person at the door. What would you like to do?"
	photo.ReplyMarkup = keyboard

	var lastErr error
	for attempt := 1; attempt <= alertRetryAttempts; attempt++ {
		_, err := t.api.Send(photo)
		if err == nil {
			logger.Info("unknown face alert sent", "evidence", evidencePath, "approval", id)
			return nil
		}

		lastErr = err
		logger.Warn("alert send failed", "attempt", attempt, "error", err)
		if attempt < alertRetryAttempts {
			time.Sleep(time.Duration(attempt) * alertRetryDelay)
		}
	}

	// photo undeliverable; drop the approval and fall back to text
	if _, err := t.deps.Approvals.Take(id); err != nil && !errors.Is(err, approval.ErrNotFound) {
		logger.Warn("approval cleanup failed", "id", id, "error", err)
	}

	t.reply(t.cfg.AdminChatID, "⚠️ Unknown person detected at the door but the photo could not be sent. Please check the camera.")
	return fmt.Errorf("send unknown face alert: %w", lastErr)
}

func (t *telegram) handleCallback(query *tgbotapi.CallbackQuery) {
	// acknowledge the button press so the client stops spinning
	if _, err := t.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("callback ack failed", "error", err)
	}

	if query.Message == nil {
		logger.Error("callback without message")
		return
	}

	action, id, ok := strings.Cut(query.Data, ":")
	if !ok {
		t.editCaption(query, "Error: malformed button data.")
		return
	}

	pending, err := t.deps.Approvals.Take(id)
	if err != nil {
		t.editCaption(query, "This alert has expired.")
		return
	}

	switch action {
	case "allow_once":
		t.allowOnce(query)
	case "allow_always":
		t.allowAlways(query, pending.EvidencePath)
	case "deny":
		t.editCaption(query, "Access denied.")
	default:
		t.editCaption(query, "Error: unknown action.")
	}
}

func (t *telegram) allowOnce(query *tgbotapi.CallbackQuery) {
	if err := t.deps.Door.Unlock(t.cfg.UnlockDuration); err != nil {
		logger.Error("one-time unlock failed", "error", err)
		t.editCaption(query, "Failed to unlock the door.")
		return
	}
	t.editCaption(query, "Door unlocked for one-time access.")
}

func (t *telegram) allowAlways(query *tgbotapi.CallbackQuery, evidencePath string) {
	name, err := t.deps.Enroller.FromEvidence(evidencePath)
	if err != nil {
		logger.Error("enrollment failed", "evidence", evidencePath, "error", err)
		t.editCaption(query, "Failed to add person to database.")
		return
	}

	msg := fmt.Sprintf("Person added to database as %s.", name)
	if err := t.deps.Door.Unlock(t.cfg.UnlockDuration); err != nil {
		logger.Error("unlock after enrollment failed", "error", err)
		msg += " Door unlock failed."
	} else {
		msg += " Door unlocked."
	}
	t.editCaption(query, msg)
}

// editCaption updates the alert's caption in place; when that fails the
// verdict is delivered as a fresh message instead.
func (t *telegram) editCaption(query *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageCaption(query.Message.Chat.ID, query.Message.MessageID, text)
	if _, err := t.api.Send(edit); err != nil {
		logger.Warn("caption edit failed", "error", err)
		t.reply(query.Message.Chat.ID, "Update: "+text)
	}
}
