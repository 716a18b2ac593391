package bot

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

type discord struct {
	session   *discordgo.Session
	cfg       Config
	deps      Deps
	channelID string
}

func newDiscord(cfg Config, deps Deps) (Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}

	d := &discord{
		session:   session,
		cfg:       cfg,
		deps:      deps,
		channelID: fmt.Sprintf("%d", cfg.AdminChatID),
	}

	session.AddHandler(d.handleMessage)
	session.AddHandler(d.handleInteraction)

	return d, nil
}

func (d *discord) Start(ctx context.Context) error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}

	logger.Info("discord bot started", "channelID", d.channelID)
	<-ctx.Done()
	return d.session.Close()
}

func (d *discord) Send(message string) error {
	_, err := d.session.ChannelMessageSend(d.channelID, message)
	if err != nil {
		logger.Error("discord send failed", "error", err, "channelID", d.channelID)
	}
	return err
}

// SendUnknownFaceAlert posts the evidence image with approval buttons.
func (d *discord) SendUnknownFaceAlert(evidencePath string) error {
	f, err := os.Open(evidencePath)
	if err != nil {
		return fmt.Errorf("open evidence %s: %w", evidencePath, err)
	}
	defer f.Close()

	id := d.deps.Approvals.Add(evidencePath)

	_, err = d.session.ChannelMessageSendComplex(d.channelID, &discordgo.MessageSend{
		Content: "Unknown person at the door. What would you like to do?",
		Files: []*discordgo.File{
			{Name: "unknown_face.jpg", Reader: f},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Allow Always", Style: discordgo.SuccessButton, CustomID: "allow_always:" + id},
					discordgo.Button{Label: "Allow Once", Style: discordgo.PrimaryButton, CustomID: "allow_once:" + id},
					discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: "deny:" + id},
				},
			},
		},
	})
	if err != nil {
		if _, takeErr := d.deps.Approvals.Take(id); takeErr != nil {
			logger.Debug("approval cleanup after failed alert", "id", id, "error", takeErr)
		}
		return fmt.Errorf("discord alert: %w", err)
	}

	logger.Info("unknown face alert sent", "evidence", evidencePath, "approval", id)
	return nil
}

func (d *discord) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.ChannelID != d.channelID {
		return
	}

	switch strings.TrimSpace(m.Content) {
	case "!status":
		if d.deps.Status != nil {
			d.Send(d.deps.Status())
		}
	}
}

func (d *discord) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	action, id, ok := strings.Cut(i.MessageComponentData().CustomID, ":")
	if !ok {
		d.respond(s, i, "Error: malformed button data.")
		return
	}

	pending, err := d.deps.Approvals.Take(id)
	if err != nil {
		d.respond(s, i, "This alert has expired.")
		return
	}

	switch action {
	case "allow_once":
		go func() {
			if err := d.deps.Door.Unlock(d.cfg.UnlockDuration); err != nil {
				logger.Error("one-time unlock failed", "error", err)
			}
		}()
		d.respond(s, i, "Door unlocked for one-time access.")
	case "allow_always":
		name, err := d.deps.Enroller.FromEvidence(pending.EvidencePath)
		if err != nil {
			logger.Error("enrollment failed", "error", err)
			d.respond(s, i, "Failed to add person to database.")
			return
		}
		go func() {
			if err := d.deps.Door.Unlock(d.cfg.UnlockDuration); err != nil {
				logger.Error("unlock after enrollment failed", "error", err)
			}
		}()
		d.respond(s, i, fmt.Sprintf("Person added to database as %s. Door unlocked.", name))
	case "deny":
		d.respond(s, i, "Access denied.")
	default:
		d.respond(s, i, "Error: unknown action.")
	}
}

func (d *discord) respond(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: text},
	})
	if err != nil {
		logger.Error("interaction respond failed", "error", err)
	}
}
