// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"writer_digest_bot/internal/domain/chat"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements chat.Platform using the gopkg.in/telebot.v3 library.
// A guild is a group chat; channels are forum topics. Telegram bots have no
// roles or voice, so those calls report chat.ErrRoleNotFound or chat.ErrUnsupported.
type TelebotAdapter struct {
	bot *telebot.Bot
}

var _ chat.Platform = (*TelebotAdapter)(nil)

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

func (tba *TelebotAdapter) Name() string { return "telegram" }

// Send delivers msg rendered as HTML to the chat identified by dest.
func (tba *TelebotAdapter) Send(_ context.Context, dest chat.Destination, msg chat.Message) error {
	id, err := parseChatID(string(dest))
	if err != nil {
		return err
	}
	_, err = tba.bot.Send(telebot.ChatID(id), RenderHTML(msg), htmlOptions())
	return err
}

func (tba *TelebotAdapter) Resolve(_ context.Context, dest chat.Destination) (bool, error) {
	id, err := parseChatID(string(dest))
	if err != nil {
		return false, err
	}
	if _, err := tba.bot.ChatByID(id); err != nil {
		return false, fmt.Errorf("failed to get chat %d: %w", id, err)
	}
	return true, nil
}

// SystemChannel is the group chat itself.
func (tba *TelebotAdapter) SystemChannel(_ context.Context, guildID string) (chat.Destination, bool, error) {
	if guildID == "" {
		return "", false, nil
	}
	return chat.Destination(guildID), true, nil
}

func (tba *TelebotAdapter) FindRole(context.Context, string, string) (string, error) {
	return "", chat.ErrRoleNotFound
}

func (tba *TelebotAdapter) GrantRole(context.Context, string, string, string) error {
	return chat.ErrUnsupported
}

// CreateChannel creates a forum topic. The group must have topics enabled.
func (tba *TelebotAdapter) CreateChannel(_ context.Context, guildID, name string) error {
	group, err := tba.chat(guildID)
	if err != nil {
		return err
	}
	if _, err := tba.bot.CreateTopic(group, &telebot.Topic{Name: name}); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// ResolveMember accepts a numeric user id. Usernames cannot be looked up by bots.
func (tba *TelebotAdapter) ResolveMember(_ context.Context, guildID, ref string) (chat.User, error) {
	userID, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return chat.User{}, chat.ErrMemberNotFound
	}
	group, err := tba.chat(guildID)
	if err != nil {
		return chat.User{}, err
	}
	member, err := tba.bot.ChatMemberOf(group, &telebot.User{ID: userID})
	if err != nil || member.User == nil {
		return chat.User{}, chat.ErrMemberNotFound
	}
	if member.Role == telebot.Left || member.Role == telebot.Kicked {
		return chat.User{}, chat.ErrMemberNotFound
	}
	return toUser(member.User), nil
}

// Kick bans and immediately unbans, which removes the member but lets them rejoin.
func (tba *TelebotAdapter) Kick(_ context.Context, guildID, userID, _ string) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	group, err := tba.chat(guildID)
	if err != nil {
		return err
	}
	user := &telebot.User{ID: id}
	if err := tba.bot.Ban(group, &telebot.ChatMember{User: user}); err != nil {
		return fmt.Errorf("failed to ban user %d: %w", id, err)
	}
	if err := tba.bot.Unban(group, user, true); err != nil {
		return fmt.Errorf("failed to unban user %d: %w", id, err)
	}
	return nil
}

func (tba *TelebotAdapter) HasPermission(_ context.Context, guildID string, _ chat.Destination, userID string, perm chat.Permission) (bool, error) {
	if perm == chat.PermissionNone {
		return true, nil
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	group, err := tba.chat(guildID)
	if err != nil {
		return false, err
	}
	member, err := tba.bot.ChatMemberOf(group, &telebot.User{ID: id})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}
	return memberHas(member, perm), nil
}

func memberHas(member *telebot.ChatMember, perm chat.Permission) bool {
	switch member.Role {
	case telebot.Creator:
		return true
	case telebot.Administrator:
		switch perm {
		case chat.PermissionKickMembers:
			return member.CanRestrictMembers
		case chat.PermissionAdministrator:
			// create_channel makes a forum topic.
			return member.CanManageTopics
		}
		return true
	}
	return false
}

// Latency times a getMe round trip.
func (tba *TelebotAdapter) Latency(context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := tba.bot.Raw("getMe", map[string]string{}); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func (tba *TelebotAdapter) Join(context.Context, string, string) (string, error) {
	return "", chat.ErrUnsupported
}

func (tba *TelebotAdapter) Play(context.Context, string, chat.Track, func(error)) error {
	return chat.ErrUnsupported
}

func (tba *TelebotAdapter) Leave(context.Context, string) error {
	return chat.ErrUnsupported
}

func (tba *TelebotAdapter) chat(guildID string) (*telebot.Chat, error) {
	id, err := parseChatID(guildID)
	if err != nil {
		return nil, err
	}
	return &telebot.Chat{ID: id}, nil
}

func parseChatID(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty chat id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", s, err)
	}
	return id, nil
}

func htmlOptions() *telebot.SendOptions {
	return &telebot.SendOptions{ParseMode: telebot.ModeHTML, DisableWebPagePreview: true}
}
