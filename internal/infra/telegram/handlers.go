package telegram

import (
	"context"
	"strconv"
	"time"

	"writer_digest_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Dispatcher receives the events built from Telegram updates.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev chat.Event) error
}

// RegisterHandlers registers "/<name>" for every command name and the join handler.
// Handler errors are logged by the dispatcher, so telebot always sees nil.
func RegisterHandlers(ctx context.Context, b *telebot.Bot, d Dispatcher, commands []string, baseLogger *logrus.Entry) {
	for _, name := range commands {
		b.Handle("/"+name, func(c telebot.Context) error {
			if c.Sender() == nil {
				return nil
			}
			_ = d.Dispatch(ctx, commandEvent(c, name))
			return nil
		})
	}
	baseLogger.WithField("commands", len(commands)).Info("Command handlers registered")

	b.Handle(telebot.OnUserJoined, func(c telebot.Context) error {
		for _, u := range joinedUsers(c.Message()) {
			_ = d.Dispatch(ctx, chat.Event{
				Kind:    chat.EventMemberJoin,
				At:      time.Now(),
				GuildID: chatID(c.Chat()),
				Channel: chat.Destination(chatID(c.Chat())),
				User:    toUser(&u),
			})
		}
		return nil
	})
}

// ReadyEvent describes the connected bot account.
func ReadyEvent(b *telebot.Bot) chat.Event {
	ev := chat.Event{Kind: chat.EventReady, At: time.Now()}
	if b.Me != nil {
		ev.User = toUser(b.Me)
	}
	return ev
}

func commandEvent(c telebot.Context, name string) chat.Event {
	msg := c.Message()
	ev := chat.Event{
		Kind:      chat.EventCommand,
		At:        time.Now(),
		GuildID:   chatID(c.Chat()),
		Channel:   chat.Destination(chatID(c.Chat())),
		User:      toUser(c.Sender()),
		Command:   name,
		Responder: replier{c: c},
	}
	if msg != nil {
		ev.RawArgs = msg.Payload
		if msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
			author := toUser(msg.ReplyTo.Sender)
			ev.ReplyTo = &author
		}
	}
	return ev
}

func joinedUsers(m *telebot.Message) []telebot.User {
	if m == nil {
		return nil
	}
	if len(m.UsersJoined) > 0 {
		return m.UsersJoined
	}
	if m.UserJoined != nil {
		return []telebot.User{*m.UserJoined}
	}
	return nil
}

func chatID(c *telebot.Chat) string {
	if c == nil {
		return ""
	}
	return strconv.FormatInt(c.ID, 10)
}

type replier struct {
	c telebot.Context
}

func (r replier) Reply(msg chat.Message) error {
	return r.c.Send(RenderHTML(msg), htmlOptions())
}
