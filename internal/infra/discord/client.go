// Package discord adapts a discordgo session to chat.Platform.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"writer_digest_bot/internal/domain/chat"

	"github.com/bwmarrin/discordgo"
)

// Intents needed for commands, joins and voice.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

type SessionAdapter struct {
	session *discordgo.Session
	voice   *voicePlayer
}

var _ chat.Platform = (*SessionAdapter)(nil)

// NewSession creates a bot session with the required intents. It is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

func NewSessionAdapter(s *discordgo.Session) *SessionAdapter {
	return &SessionAdapter{session: s, voice: newVoicePlayer(s)}
}

func (a *SessionAdapter) Name() string { return "discord" }

func (a *SessionAdapter) Send(_ context.Context, dest chat.Destination, msg chat.Message) error {
	send := &discordgo.MessageSend{Content: msg.Text}
	if msg.Card != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Card)}
	}
	if _, err := a.session.ChannelMessageSendComplex(string(dest), send); err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", dest, err)
	}
	return nil
}

// Resolve reports whether dest is a channel the bot can see.
func (a *SessionAdapter) Resolve(_ context.Context, dest chat.Destination) (bool, error) {
	if dest == "" {
		return false, nil
	}
	if _, err := a.session.State.Channel(string(dest)); err == nil {
		return true, nil
	}
	if _, err := a.session.Channel(string(dest)); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get channel %s: %w", dest, err)
	}
	return true, nil
}

func (a *SessionAdapter) SystemChannel(_ context.Context, guildID string) (chat.Destination, bool, error) {
	g, err := a.guild(guildID)
	if err != nil {
		return "", false, err
	}
	if g.SystemChannelID == "" {
		return "", false, nil
	}
	return chat.Destination(g.SystemChannelID), true, nil
}

func (a *SessionAdapter) FindRole(_ context.Context, guildID, name string) (string, error) {
	roles, err := a.session.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to list roles: %w", err)
	}
	if r := findRole(roles, name); r != nil {
		return r.ID, nil
	}
	return "", chat.ErrRoleNotFound
}

func (a *SessionAdapter) GrantRole(_ context.Context, guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (a *SessionAdapter) CreateChannel(_ context.Context, guildID, name string) error {
	_, err := a.session.GuildChannelCreate(guildID, name, discordgo.ChannelTypeGuildText)
	return err
}

// ResolveMember accepts a mention, a user id, a username or a nickname.
func (a *SessionAdapter) ResolveMember(_ context.Context, guildID, ref string) (chat.User, error) {
	if id := memberID(ref); id != "" {
		m, err := a.session.GuildMember(guildID, id)
		if err != nil {
			if isNotFound(err) {
				return chat.User{}, chat.ErrMemberNotFound
			}
			return chat.User{}, fmt.Errorf("failed to get member %s: %w", id, err)
		}
		return memberUser(m), nil
	}

	g, err := a.session.State.Guild(guildID)
	if err != nil {
		return chat.User{}, chat.ErrMemberNotFound
	}
	if m := findMember(g.Members, ref); m != nil {
		return memberUser(m), nil
	}
	return chat.User{}, chat.ErrMemberNotFound
}

func (a *SessionAdapter) Kick(_ context.Context, guildID, userID, reason string) error {
	return a.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (a *SessionAdapter) HasPermission(_ context.Context, _ string, channel chat.Destination, userID string, perm chat.Permission) (bool, error) {
	if perm == chat.PermissionNone {
		return true, nil
	}
	perms, err := a.session.UserChannelPermissions(userID, string(channel))
	if err != nil {
		return false, fmt.Errorf("failed to compute permissions: %w", err)
	}
	return allows(perms, perm), nil
}

// Latency is the gateway heartbeat round trip.
func (a *SessionAdapter) Latency(context.Context) (time.Duration, error) {
	return a.session.HeartbeatLatency(), nil
}

func (a *SessionAdapter) Join(ctx context.Context, guildID, userID string) (string, error) {
	return a.voice.join(ctx, guildID, userID)
}

func (a *SessionAdapter) Play(ctx context.Context, guildID string, track chat.Track, onDone func(error)) error {
	return a.voice.play(ctx, guildID, track, onDone)
}

func (a *SessionAdapter) Leave(ctx context.Context, guildID string) error {
	return a.voice.leave(ctx, guildID)
}

// Close stops playback everywhere and closes the gateway.
func (a *SessionAdapter) Close() error {
	a.voice.leaveAll()
	return a.session.Close()
}

func (a *SessionAdapter) guild(guildID string) (*discordgo.Guild, error) {
	if g, err := a.session.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := a.session.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %s: %w", guildID, err)
	}
	return g, nil
}

func allows(perms int64, perm chat.Permission) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	switch perm {
	case chat.PermissionKickMembers:
		return perms&discordgo.PermissionKickMembers != 0
	case chat.PermissionNone:
		return true
	}
	return false
}

// memberID extracts a user id from a mention or a bare snowflake.
func memberID(ref string) string {
	if m := mentionPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if ref != "" && strings.Trim(ref, "0123456789") == "" {
		return ref
	}
	return ""
}

func findRole(roles []*discordgo.Role, name string) *discordgo.Role {
	for _, r := range roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// findMember matches a typed name, with or without a leading @.
func findMember(members []*discordgo.Member, ref string) *discordgo.Member {
	ref = strings.TrimPrefix(ref, "@")
	if ref == "" {
		return nil
	}
	for _, m := range members {
		if m.User == nil {
			continue
		}
		if m.User.Username == ref || (m.Nick != "" && m.Nick == ref) || (m.User.GlobalName != "" && m.User.GlobalName == ref) {
			return m
		}
	}
	return nil
}

func memberUser(m *discordgo.Member) chat.User {
	if m.User == nil {
		return chat.User{}
	}
	return toUser(m.User)
}

func toUser(u *discordgo.User) chat.User {
	return chat.User{ID: u.ID, Name: u.Username, Mention: u.Mention(), IsBot: u.Bot}
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
