package bot

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/upgradebot/internal/api/raidbots"
)

type fakeService struct {
	refreshed  [][]string
	refreshErr error
	playerArg  string
	statArg    string
	matrix     string
}

func (f *fakeService) Refresh(ctx context.Context, text string) (string, error) {
	return f.RefreshLinks(ctx, f.ExtractLinks(text))
}

func (f *fakeService) RefreshLinks(_ context.Context, links []string) (string, error) {
	f.refreshed = append(f.refreshed, links)
	return "refreshed", f.refreshErr
}

func (f *fakeService) ExtractLinks(text string) []string {
	return raidbots.ExtractLinks(text, "raidbots.com")
}

func (f *fakeService) MatchLink(raw string) (string, bool) {
	return raidbots.MatchReportLink(raw, "raidbots.com")
}

func (f *fakeService) Matrix() (string, error) { return f.matrix, nil }

func (f *fakeService) PlayerUpgrades(name string) (string, error) {
	f.playerArg = name
	return "player " + name, nil
}

func (f *fakeService) StatRanking(label string) (string, error) {
	f.statArg = label
	return "stat " + label, nil
}

func (f *fakeService) LastUpdated() (string, error) { return "Last Updated: 2026-10-17", nil }

func commandUpdate(text string, entities ...tgbotapi.MessageEntity) tgbotapi.Update {
	cmdLen := strings.IndexByte(text, ' ')
	if cmdLen < 0 {
		cmdLen = len(text)
	}
	all := append([]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}, entities...)
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Entities: all,
		Chat:     &tgbotapi.Chat{ID: 42},
	}}
}

func TestHandleCommandRoutesLookups(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	msgs := h.HandleCommand(context.Background(), commandUpdate("/player Jaina Proudmoore"))
	if len(msgs) != 1 || msgs[0].Text != "player Jaina Proudmoore" {
		t.Fatalf("player reply = %+v", msgs)
	}
	if msgs[0].ChatID != 42 || msgs[0].ParseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("reply chat/mode = %d/%q, want 42/Markdown", msgs[0].ChatID, msgs[0].ParseMode)
	}

	msgs = h.HandleCommand(context.Background(), commandUpdate("/stat crit_haste"))
	if svc.statArg != "crit_haste" || msgs[0].Text != "stat crit_haste" {
		t.Fatalf("stat reply = %+v, arg %q", msgs, svc.statArg)
	}

	msgs = h.HandleCommand(context.Background(), commandUpdate("/player"))
	if !strings.Contains(msgs[0].Text, "Usage: /player") {
		t.Fatalf("empty player reply = %q, want usage", msgs[0].Text)
	}

	msgs = h.HandleCommand(context.Background(), commandUpdate("/bogus"))
	if !strings.HasPrefix(msgs[0].Text, "Unknown command") {
		t.Fatalf("unknown reply = %q", msgs[0].Text)
	}
}

func TestHandleSimsUsesAnchors(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	text := `/sims <a href="https://raidbots.com/simbot/report/A1">a</a><a href="https://raidbots.com/simbot/report/B2">b</a>`
	msgs := h.HandleCommand(context.Background(), commandUpdate(text))

	want := [][]string{{"https://raidbots.com/simbot/report/A1", "https://raidbots.com/simbot/report/B2"}}
	if !reflect.DeepEqual(svc.refreshed, want) {
		t.Fatalf("refreshed = %v, want %v", svc.refreshed, want)
	}
	if msgs[0].Text != "refreshed" {
		t.Fatalf("reply = %q, want refreshed", msgs[0].Text)
	}
}

func TestHandleSimsFallsBackToURLEntities(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	link := "https://raidbots.com/simbot/report/Zed"
	text := "/sims 🎰 " + link + " https://example.com/x"
	// "/sims " is 6 UTF-16 units and the emoji is 2 more, plus a space.
	urlEntity := tgbotapi.MessageEntity{Type: "url", Offset: 9, Length: len(link)}
	otherEntity := tgbotapi.MessageEntity{Type: "url", Offset: 9 + len(link) + 1, Length: len("https://example.com/x")}
	textLink := tgbotapi.MessageEntity{Type: "text_link", Offset: 0, Length: 1, URL: "https://raidbots.com/simbot/report/Hidden"}

	h.HandleCommand(context.Background(), commandUpdate(text, urlEntity, otherEntity, textLink))

	want := [][]string{{link, "https://raidbots.com/simbot/report/Hidden"}}
	if !reflect.DeepEqual(svc.refreshed, want) {
		t.Fatalf("refreshed = %v, want %v", svc.refreshed, want)
	}
}

func TestHandleSimsReadsRepliedMessage(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	update := commandUpdate("/sims")
	update.Message.ReplyToMessage = &tgbotapi.Message{
		Text: `<a href="https://raidbots.com/simbot/report/R1">r</a>`,
	}

	h.HandleCommand(context.Background(), update)

	want := [][]string{{"https://raidbots.com/simbot/report/R1"}}
	if !reflect.DeepEqual(svc.refreshed, want) {
		t.Fatalf("refreshed = %v, want %v", svc.refreshed, want)
	}
}

func TestHandleSimsWithoutLinks(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	msgs := h.HandleCommand(context.Background(), commandUpdate("/sims nothing here"))

	if len(svc.refreshed) != 0 {
		t.Fatalf("refreshed = %v, want none", svc.refreshed)
	}
	if !strings.HasPrefix(msgs[0].Text, "No report links found") {
		t.Fatalf("reply = %q", msgs[0].Text)
	}
}

func TestHandleSimsReportsError(t *testing.T) {
	svc := &fakeService{refreshErr: errors.New("disk full")}
	h := NewHandler(svc)

	msgs := h.HandleCommand(context.Background(), commandUpdate(`/sims <a href="https://raidbots.com/simbot/report/A">a</a>`))

	if msgs[0].Text != "Error: disk full" {
		t.Fatalf("reply = %q, want error text", msgs[0].Text)
	}
}

func TestHandleCommandSplitsLongReplies(t *testing.T) {
	svc := &fakeService{matrix: "📊\n```\n" + strings.Repeat("Player 100.0 200.0\n", 400) + "```"}
	h := NewHandler(svc)

	msgs := h.HandleCommand(context.Background(), commandUpdate("/matrix"))

	if len(msgs) < 2 {
		t.Fatalf("got %d messages, want several", len(msgs))
	}
	for i, m := range msgs {
		if len(m.Text) > maxMessageLength {
			t.Fatalf("message %d has %d bytes, limit %d", i, len(m.Text), maxMessageLength)
		}
		if strings.Count(m.Text, fence)%2 != 0 {
			t.Fatalf("message %d has unbalanced code fences", i)
		}
	}
}
