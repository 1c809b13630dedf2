package notifier

import (
	"fmt"
	"log"

	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/bwmarrin/discordgo"
)

// Alerter pushes short operational alerts to the on-call channel. It mirrors
// the admin error emails so integration failures are visible even when the
// mail transport itself is the thing that is broken.
type Alerter interface {
	Alert(message string) error
}

type DiscordAlerter struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAlerter(cfg *config.Config) (*DiscordAlerter, error) {
	if cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if cfg.DiscordAlertsChannelID == "" {
		return nil, fmt.Errorf("discord alerts channel ID is empty")
	}

	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, err
	}

	return &DiscordAlerter{
		session:   session,
		channelID: cfg.DiscordAlertsChannelID,
	}, nil
}

func (a *DiscordAlerter) Alert(message string) error {
	if a.session == nil {
		return fmt.Errorf("discord session is nil")
	}

	_, err := a.session.ChannelMessageSend(a.channelID, "⚠️ **Agenda Maçônica**\n"+message)
	if err != nil {
		log.Printf("Failed to send discord alert: %v", err)
		return err
	}

	return nil
}
