package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"writer_digest_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
)

const (
	replyUnsupported  = "このプラットフォームでは利用できない機能です。"
	replyNotInVoice   = "ボイスチャンネルに接続してからコマンドを実行してください。"
	replyNotConnected = "ボイスチャンネルに接続していません。"
	replyTrackFailed  = "音声を取得できませんでした。"
)

// TrackResolver turns a URL or search query into a playable stream.
type TrackResolver interface {
	Resolve(ctx context.Context, query string) (chat.Track, error)
}

// VoiceService implements join, play and stop.
type VoiceService struct {
	voice    chat.Voice
	resolver TrackResolver
	logger   *logrus.Entry
}

func NewVoiceService(voice chat.Voice, resolver TrackResolver, logger *logrus.Entry) *VoiceService {
	return &VoiceService{voice: voice, resolver: resolver, logger: logger}
}

func (s *VoiceService) Join(ctx context.Context, ev chat.Event) (chat.Message, error) {
	channel, err := s.voice.Join(ctx, ev.GuildID, ev.User.ID)
	if msg, ok := voiceReply(err); ok {
		return msg, nil
	}
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to join voice: %w", err)
	}
	return chat.Text("🔊 %s に接続しました。", channel), nil
}

// Play joins the caller's channel if needed and starts playback. It returns as
// soon as the stream starts; the end of playback is only logged.
func (s *VoiceService) Play(ctx context.Context, ev chat.Event) (chat.Message, error) {
	if _, err := s.voice.Join(ctx, ev.GuildID, ev.User.ID); err != nil {
		if msg, ok := voiceReply(err); ok {
			return msg, nil
		}
		return chat.Message{}, fmt.Errorf("failed to join voice: %w", err)
	}

	query := strings.Join(ev.Args, " ")
	track, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		s.logger.WithError(err).WithField("query", query).Warn("Could not resolve track")
		return chat.Text(replyTrackFailed), nil
	}

	logCtx := s.logger.WithFields(logrus.Fields{"guild_id": ev.GuildID, "track": track.Title})
	err = s.voice.Play(ctx, ev.GuildID, track, func(err error) {
		if err != nil {
			logCtx.WithError(err).Warn("Playback ended with error")
			return
		}
		logCtx.Info("Playback finished")
	})
	if msg, ok := voiceReply(err); ok {
		return msg, nil
	}
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to start playback: %w", err)
	}
	logCtx.Info("Playback started")
	return chat.Text("▶️ 再生中: %s", track.Title), nil
}

func (s *VoiceService) Stop(ctx context.Context, ev chat.Event) (chat.Message, error) {
	err := s.voice.Leave(ctx, ev.GuildID)
	if msg, ok := voiceReply(err); ok {
		return msg, nil
	}
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to leave voice: %w", err)
	}
	return chat.Text("⏹️ 切断しました。"), nil
}

// voiceReply maps expected voice errors to user replies.
func voiceReply(err error) (chat.Message, bool) {
	switch {
	case err == nil:
		return chat.Message{}, false
	case errors.Is(err, chat.ErrUnsupported):
		return chat.Text(replyUnsupported), true
	case errors.Is(err, chat.ErrNotInVoice):
		return chat.Text(replyNotInVoice), true
	case errors.Is(err, chat.ErrNotConnected):
		return chat.Text(replyNotConnected), true
	}
	return chat.Message{}, false
}
