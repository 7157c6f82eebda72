package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"writer_digest_bot/internal/domain/chat"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
)

// voicePlayer keeps one connection and at most one playing stream per guild.
type voicePlayer struct {
	session *discordgo.Session

	mu      sync.Mutex
	players map[string]*guildPlayer
}

type guildPlayer struct {
	conn    *discordgo.VoiceConnection
	encoder *dca.EncodeSession
}

func newVoicePlayer(s *discordgo.Session) *voicePlayer {
	return &voicePlayer{session: s, players: make(map[string]*guildPlayer)}
}

func (v *voicePlayer) join(_ context.Context, guildID, userID string) (string, error) {
	vs, err := v.session.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", chat.ErrNotInVoice
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if p, ok := v.players[guildID]; ok && p.conn.ChannelID == vs.ChannelID {
		return v.channelName(vs.ChannelID), nil
	}
	conn, err := v.session.ChannelVoiceJoin(guildID, vs.ChannelID, false, true)
	if err != nil {
		return "", fmt.Errorf("failed to join voice channel %s: %w", vs.ChannelID, err)
	}
	if p, ok := v.players[guildID]; ok {
		p.conn = conn
	} else {
		v.players[guildID] = &guildPlayer{conn: conn}
	}
	return v.channelName(vs.ChannelID), nil
}

// play replaces any stream already running in the guild.
func (v *voicePlayer) play(_ context.Context, guildID string, track chat.Track, onDone func(error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.players[guildID]
	if !ok {
		return chat.ErrNotConnected
	}
	if p.encoder != nil {
		p.encoder.Cleanup()
		p.encoder = nil
	}

	opts := *dca.StdEncodeOptions
	opts.RawOutput = true
	opts.Bitrate = 96
	opts.Application = dca.AudioApplicationLowDelay
	enc, err := dca.EncodeFile(track.StreamURL, &opts)
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}
	p.encoder = enc

	go v.stream(guildID, p.conn, enc, onDone)
	return nil
}

func (v *voicePlayer) stream(guildID string, conn *discordgo.VoiceConnection, enc *dca.EncodeSession, onDone func(error)) {
	done := make(chan error, 1)
	_ = conn.Speaking(true)
	dca.NewStream(enc, conn, done)
	err := <-done
	_ = conn.Speaking(false)

	v.mu.Lock()
	if p, ok := v.players[guildID]; ok && p.encoder == enc {
		p.encoder = nil
	}
	v.mu.Unlock()
	enc.Cleanup()

	if errors.Is(err, io.EOF) {
		err = nil
	}
	if onDone != nil {
		onDone(err)
	}
}

func (v *voicePlayer) leave(_ context.Context, guildID string) error {
	v.mu.Lock()
	p, ok := v.players[guildID]
	delete(v.players, guildID)
	v.mu.Unlock()

	if !ok {
		return chat.ErrNotConnected
	}
	return p.close()
}

func (v *voicePlayer) leaveAll() {
	v.mu.Lock()
	players := v.players
	v.players = make(map[string]*guildPlayer)
	v.mu.Unlock()

	for _, p := range players {
		_ = p.close()
	}
}

func (p *guildPlayer) close() error {
	if p.encoder != nil {
		p.encoder.Cleanup()
	}
	return p.conn.Disconnect()
}

func (v *voicePlayer) channelName(channelID string) string {
	if ch, err := v.session.State.Channel(channelID); err == nil && ch.Name != "" {
		return ch.Name
	}
	return channelID
}
