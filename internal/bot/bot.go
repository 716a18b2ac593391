package bot

import (
	"fmt"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/approval"
)

// Deps are the collaborators shared by every provider.
type Deps struct {
	Approvals *approval.Manager
	Door      Unlocker
	Enroller  Enroller
	Status    StatusFunc
}

func New(cfg Config, deps Deps) (Bot, error) {
	switch cfg.Provider {
	case "telegram":
		return newTelegram(cfg, deps)
	case "discord":
		return newDiscord(cfg, deps)
	default:
		return nil, fmt.Errorf("unknown bot provider: %s", cfg.Provider)
	}
}
