package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"writer_digest_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
)

const replyKickTarget = "キックするメンバーを指定するか、対象のメッセージに返信してください。"

// AdminService implements the administration commands. Permission checks
// happen in the router before these run.
type AdminService struct {
	guilds chat.Guilds
	logger *logrus.Entry
}

func NewAdminService(guilds chat.Guilds, logger *logrus.Entry) *AdminService {
	return &AdminService{guilds: guilds, logger: logger}
}

// CreateChannel creates a text channel in the caller's guild.
func (s *AdminService) CreateChannel(ctx context.Context, ev chat.Event) (chat.Message, error) {
	name := ev.Args[0]
	if err := s.guilds.CreateChannel(ctx, ev.GuildID, name); err != nil {
		if errors.Is(err, chat.ErrUnsupported) {
			return chat.Text(replyUnsupported), nil
		}
		return chat.Message{}, fmt.Errorf("failed to create channel %q: %w", name, err)
	}
	s.logger.WithFields(logrus.Fields{"guild_id": ev.GuildID, "channel": name}).Info("Channel created")
	return chat.Text("チャンネル #%s を作成しました。", name), nil
}

// Kick removes a member. The member is the first argument, or the author of
// the replied-to message when no argument is given. The remaining words form the reason.
func (s *AdminService) Kick(ctx context.Context, ev chat.Event) (chat.Message, error) {
	var (
		member chat.User
		reason string
		err    error
	)

	switch {
	case len(ev.Args) > 0:
		ref := ev.Args[0]
		reason = strings.Join(ev.Args[1:], " ")
		member, err = s.guilds.ResolveMember(ctx, ev.GuildID, ref)
		if errors.Is(err, chat.ErrMemberNotFound) {
			return chat.Text("メンバー「%s」が見つかりません。", ref), nil
		}
		if err != nil {
			return chat.Message{}, fmt.Errorf("failed to resolve member %q: %w", ref, err)
		}
	case ev.ReplyTo != nil:
		member = *ev.ReplyTo
	default:
		return chat.Text(replyKickTarget), nil
	}

	if err := s.guilds.Kick(ctx, ev.GuildID, member.ID, reason); err != nil {
		return chat.Message{}, fmt.Errorf("failed to kick member %s: %w", member.ID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"guild_id":  ev.GuildID,
		"member_id": member.ID,
		"reason":    reason,
	}).Info("Member kicked")
	return chat.Text("%s をキックしました。", member.Name), nil
}

// Ping reports the platform round-trip latency.
func (s *AdminService) Ping(ctx context.Context, _ chat.Event) (chat.Message, error) {
	latency, err := s.guilds.Latency(ctx)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to measure latency: %w", err)
	}
	return chat.Text("Pong! 応答速度: %dms", latency.Milliseconds()), nil
}
