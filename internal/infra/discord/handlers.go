package discord

import (
	"context"
	"strings"
	"time"
	"unicode"

	"writer_digest_bot/internal/domain/chat"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Dispatcher receives the events built from gateway events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev chat.Event) error
}

// RegisterHandlers wires Ready, MessageCreate and GuildMemberAdd to d.
// Messages become command events when they start with prefix.
func RegisterHandlers(ctx context.Context, a *SessionAdapter, d Dispatcher, prefix string, baseLogger *logrus.Entry) {
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		ev := chat.Event{Kind: chat.EventReady, At: time.Now()}
		if r.User != nil {
			ev.User = toUser(r.User)
		}
		_ = d.Dispatch(ctx, ev)
	})

	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		ev, ok := messageEvent(m, prefix)
		if !ok {
			return
		}
		ev.Responder = replier{adapter: a, channel: ev.Channel}
		_ = d.Dispatch(ctx, ev)
	})

	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.Member == nil || m.User == nil {
			return
		}
		_ = d.Dispatch(ctx, chat.Event{
			Kind:    chat.EventMemberJoin,
			At:      time.Now(),
			GuildID: m.GuildID,
			User:    toUser(m.User),
		})
	})

	baseLogger.WithField("prefix", prefix).Info("Gateway handlers registered")
}

// messageEvent turns a prefixed guild message into a command event.
func messageEvent(m *discordgo.MessageCreate, prefix string) (chat.Event, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return chat.Event{}, false
	}
	name, rest, ok := splitCommand(m.Content, prefix)
	if !ok {
		return chat.Event{}, false
	}
	ev := chat.Event{
		Kind:    chat.EventCommand,
		At:      time.Now(),
		GuildID: m.GuildID,
		Channel: chat.Destination(m.ChannelID),
		User:    toUser(m.Author),
		Command: name,
		RawArgs: rest,
	}
	if ref := m.ReferencedMessage; ref != nil && ref.Author != nil {
		author := toUser(ref.Author)
		ev.ReplyTo = &author
	}
	return ev, true
}

// splitCommand splits "!name rest of line" into name and the trimmed rest.
func splitCommand(content, prefix string) (string, string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	body := strings.TrimPrefix(content, prefix)
	end := strings.IndexFunc(body, unicode.IsSpace)
	if end < 0 {
		end = len(body)
	}
	name := body[:end]
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(body[end:]), true
}

type replier struct {
	adapter *SessionAdapter
	channel chat.Destination
}

func (r replier) Reply(msg chat.Message) error {
	return r.adapter.Send(context.Background(), r.channel, msg)
}
