package chat

import (
	"context"
	"fmt"
	"time"
)

// Errors shared by every platform adapter.
var ErrUnsupported = fmt.Errorf("operation not supported by this platform")
var ErrMemberNotFound = fmt.Errorf("member not found")
var ErrRoleNotFound = fmt.Errorf("role not found")
var ErrNotInVoice = fmt.Errorf("user is not connected to a voice channel")
var ErrNotConnected = fmt.Errorf("bot is not connected to a voice channel")

// Destination identifies a channel (Discord) or chat (Telegram) as a string id.
type Destination string

// User is the platform-neutral view of a chat member.
type User struct {
	ID      string
	Name    string
	Mention string
	IsBot   bool
}

// Permission is a platform-level privilege required by some commands.
type Permission int

const (
	PermissionNone Permission = iota
	PermissionAdministrator
	PermissionKickMembers
)

func (p Permission) String() string {
	switch p {
	case PermissionAdministrator:
		return "administrator"
	case PermissionKickMembers:
		return "kick_members"
	default:
		return "none"
	}
}

// Sender delivers messages and resolves destinations.
// This keeps the application logic independent from the bot library in use.
type Sender interface {
	Send(ctx context.Context, dest Destination, msg Message) error
	// Resolve reports whether dest refers to a channel the bot can reach.
	Resolve(ctx context.Context, dest Destination) (bool, error)
}

// Guilds covers membership and administration of a guild (Telegram: group chat).
type Guilds interface {
	SystemChannel(ctx context.Context, guildID string) (Destination, bool, error)
	FindRole(ctx context.Context, guildID, name string) (string, error)
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	CreateChannel(ctx context.Context, guildID, name string) error
	ResolveMember(ctx context.Context, guildID, ref string) (User, error)
	Kick(ctx context.Context, guildID, userID, reason string) error
	HasPermission(ctx context.Context, guildID string, channel Destination, userID string, perm Permission) (bool, error)
	Latency(ctx context.Context) (time.Duration, error)
}

// Track is a playable audio stream resolved by a media extractor.
type Track struct {
	Title     string
	StreamURL string
}

// Voice controls voice channel playback.
type Voice interface {
	Join(ctx context.Context, guildID, userID string) (string, error)
	// Play starts playback and returns immediately; onDone runs when the stream ends.
	Play(ctx context.Context, guildID string, track Track, onDone func(error)) error
	Leave(ctx context.Context, guildID string) error
}

// Platform is everything an adapter provides to the application.
type Platform interface {
	Name() string
	Sender
	Guilds
	Voice
}
