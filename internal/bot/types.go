package bot

import (
	"context"
	"time"
)

// Bot is the notification channel: it pushes unknown-face alerts to the
// owner and handles their verdict.
type Bot interface {
	Start(ctx context.Context) error
	Send(message string) error
	SendUnknownFaceAlert(evidencePath string) error
}

// Unlocker pulses the door open; implemented by the relay.
type Unlocker interface {
	Unlock(duration time.Duration) error
}

// Enroller adds an approved unknown face to the database.
type Enroller interface {
	FromEvidence(evidencePath string) (string, error)
}

// StatusFunc renders the /status report.
type StatusFunc func() string

// Config carries everything a provider needs beyond its token.
type Config struct {
	Provider    string
	Token       string
	AdminChatID int64

	UnlockDuration time.Duration
}
