package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpgradeService is the part of service.UpgradeService the bot talks to.
type UpgradeService interface {
	Refresh(ctx context.Context, text string) (string, error)
	RefreshLinks(ctx context.Context, links []string) (string, error)
	ExtractLinks(text string) []string
	MatchLink(raw string) (string, bool)
	Matrix() (string, error)
	PlayerUpgrades(name string) (string, error)
	StatRanking(label string) (string, error)
	LastUpdated() (string, error)
}

const helpText = "Available commands:\n" +
	"/sims <links> - Load sim reports (paste the list, or reply to it)\n" +
	"/matrix - Show the upgrade matrix\n" +
	"/player <name> - Show a player's upgrades\n" +
	"/stat <label> - Rank players by a stat combo\n" +
	"/updated - Show when the sims were last loaded"

type Handler struct {
	upgradeService UpgradeService
}

func NewHandler(upgradeService UpgradeService) *Handler {
	return &Handler{upgradeService: upgradeService}
}

// HandleCommand answers one command. Long answers come back as several messages.
func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) []tgbotapi.MessageConfig {
	command := strings.ToLower(update.Message.Command())
	args := update.Message.CommandArguments()

	var text string
	switch command {
	case "start":
		text = "Welcome to UpgradeBot! Use /help to see available commands."
	case "help":
		text = helpText
	case "sims":
		text = h.handleSims(ctx, update.Message)
	case "matrix":
		text = reply(h.upgradeService.Matrix())
	case "player":
		if args == "" {
			text = "Please provide a player name. Usage: /player <name>"
		} else {
			text = reply(h.upgradeService.PlayerUpgrades(args))
		}
	case "stat":
		if args == "" {
			text = "Please provide a stat label. Usage: /stat <label>"
		} else {
			text = reply(h.upgradeService.StatRanking(args))
		}
	case "updated":
		text = reply(h.upgradeService.LastUpdated())
	default:
		text = "Unknown command. Use /help to see available commands."
	}

	chunks := splitMessage(text, maxMessageLength)
	msgs := make([]tgbotapi.MessageConfig, 0, len(chunks))
	for _, chunk := range chunks {
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msgs = append(msgs, msg)
	}
	return msgs
}

func reply(text string, err error) string {
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return text
}

// handleSims loads reports from anchors in the command text. Plain links that Telegram
// marked as URLs are used when there are no anchors. With no arguments the replied-to
// message is read instead.
func (h *Handler) handleSims(ctx context.Context, message *tgbotapi.Message) string {
	source := message
	if strings.TrimSpace(message.CommandArguments()) == "" && message.ReplyToMessage != nil {
		source = message.ReplyToMessage
	}

	text := source.Text
	if text == "" {
		text = source.Caption
	}

	links := h.upgradeService.ExtractLinks(text)
	if len(links) == 0 {
		links = h.entityLinks(source)
	}
	if len(links) == 0 {
		return "No report links found. Usage: /sims <raidbots report links>"
	}

	return reply(h.upgradeService.RefreshLinks(ctx, links))
}

func (h *Handler) entityLinks(message *tgbotapi.Message) []string {
	text, entities := message.Text, message.Entities
	if text == "" {
		text, entities = message.Caption, message.CaptionEntities
	}

	var links []string
	for _, e := range entities {
		var raw string
		switch {
		case e.IsTextLink():
			raw = e.URL
		case e.IsURL():
			raw = entityText(text, e)
		default:
			continue
		}
		if link, ok := h.upgradeService.MatchLink(raw); ok {
			links = append(links, link)
		}
	}
	return links
}

// entityText slices text by an entity's UTF-16 offsets.
func entityText(text string, e tgbotapi.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	start, end := e.Offset, e.Offset+e.Length
	if start < 0 || end > len(units) || start > end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}
