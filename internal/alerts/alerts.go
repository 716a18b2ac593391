package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

type NotifyFunc func(message string)

// Alerter pushes operational problems (camera dead, storage unreachable) to
// the owner's chat, with a per-component cooldown so a flapping camera does
// not flood the channel.
type Alerter struct {
	mu       sync.Mutex
	notify   NotifyFunc
	lastSent map[string]time.Time
	cooldown time.Duration

	now func() time.Time
}

func New(notify NotifyFunc, cooldown time.Duration) *Alerter {
	return &Alerter{
		notify:   notify,
		lastSent: make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Warn reports a recoverable problem.
func (a *Alerter) Warn(component, message string, err error) {
	a.send("⚠️", component, message, err)
}

// Critical reports a problem that likely needs someone at the device.
func (a *Alerter) Critical(component, message string, err error) {
	a.send("🚨", component, message, err)
}

func (a *Alerter) send(prefix, component, message string, err error) {
	if a.notify == nil {
		return
	}

	a.mu.Lock()
	key := component + ":" + message
	if last, ok := a.lastSent[key]; ok && a.now().Sub(last) < a.cooldown {
		a.mu.Unlock()
		logger.Debug("alert suppressed (cooldown)", "component", component, "message", message)
		return
	}
	a.lastSent[key] = a.now()
	a.mu.Unlock()

	text := fmt.Sprintf("%s %s: %s", prefix, component, message)
	if err != nil {
		text += fmt.Sprintf("\n\nError: %v", err)
	}

	a.notify(text)
	logger.Info("alert sent", "component", component)
}
