package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/domain/digest"
	"writer_digest_bot/internal/domain/progress"

	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the bot is assembled from.
type Deps struct {
	Platform chat.Platform
	// Progress may be nil when no storage backend is configured.
	Progress progress.Repository
	Weather  digest.WeatherSource
	News     digest.NewsSource
	Ledger   digest.RunLedger
	Tracks   TrackResolver

	Targets     digest.Targets
	NewsCount   int
	WelcomeRole string
	Prefix      string
	Location    *time.Location
	Logger      *logrus.Entry
}

// Bot is the application context built once at startup.
type Bot struct {
	Dispatcher *Dispatcher
	Router     *Router
	Digest     *DigestService
	Progress   *ProgressService
	Admin      *AdminService
	Welcome    *WelcomeService
	Voice      *VoiceService
}

func NewBot(d Deps) *Bot {
	logger := d.Logger
	component := func(name string) *logrus.Entry {
		return logger.WithField("component", name)
	}

	b := &Bot{
		Dispatcher: NewDispatcher(component("dispatcher")),
		Router:     NewRouter(d.Prefix, d.Platform, component("router")),
		Progress:   NewProgressService(d.Progress, d.Location, component("progress")),
		Admin:      NewAdminService(d.Platform, component("admin")),
		Welcome:    NewWelcomeService(d.Platform, d.WelcomeRole, component("welcome")),
		Voice:      NewVoiceService(d.Platform, d.Tracks, component("voice")),
	}
	b.Digest = NewDigestService(d.Platform, d.Weather, d.News, d.Ledger, d.Targets, d.NewsCount, d.Location, component("digest"))

	b.Router.Register(b.commandTable()...)

	b.Dispatcher.On(chat.EventReady, b.Welcome.HandleReady)
	b.Dispatcher.On(chat.EventMemberJoin, b.Welcome.HandleJoin)
	b.Dispatcher.On(chat.EventCommand, b.Router.Handle)
	b.Dispatcher.On(chat.EventDailyTick, b.Digest.HandleTick)
	return b
}

func (b *Bot) commandTable() []*Command {
	return []*Command{
		{
			Name:        "create_channel",
			Aliases:     []string{"create_ch"},
			Usage:       "create_channel <名前>",
			Description: "テキストチャンネルを作成します",
			MinArgs:     1,
			MaxArgs:     1,
			Permission:  chat.PermissionAdministrator,
			Handler:     b.Admin.CreateChannel,
		},
		{
			Name:        "kick",
			Usage:       "kick <メンバー> [理由]",
			Description: "メンバーをキックします",
			MaxArgs:     -1,
			Permission:  chat.PermissionKickMembers,
			Handler:     b.Admin.Kick,
		},
		{
			Name:        "ping",
			Usage:       "ping",
			Description: "応答速度を表示します",
			MaxArgs:     0,
			Handler:     b.Admin.Ping,
		},
		{
			Name:        "work_start",
			Usage:       "work_start <作品名>",
			Description: "執筆開始を宣言します",
			MinArgs:     1,
			MaxArgs:     1,
			Handler:     b.Progress.WorkStart,
		},
		{
			Name:        "write",
			Usage:       "write <作品名> <文字数>",
			Description: "執筆した文字数を記録します",
			MinArgs:     2,
			MaxArgs:     2,
			Handler:     b.Progress.Write,
		},
		{
			Name:        "stats",
			Usage:       "stats [作品名]",
			Description: "自分の累計文字数を表示します",
			MaxArgs:     1,
			Handler:     b.Progress.Stats,
		},
		{
			Name:        "entry",
			Usage:       "entry <作品名> <テーマ> <目標文字数> <締切 YYYY-MM-DD>",
			Description: "作品を登録します",
			MinArgs:     4,
			MaxArgs:     4,
			Handler:     b.Progress.Entry,
		},
		{
			Name:        "check",
			Usage:       "check <作品名>",
			Description: "作品の進捗を確認します",
			MinArgs:     1,
			MaxArgs:     1,
			Handler:     b.Progress.Check,
		},
		{
			Name:        "join",
			Usage:       "join",
			Description: "ボイスチャンネルに接続します",
			MaxArgs:     0,
			Handler:     b.Voice.Join,
		},
		{
			Name:        "play",
			Usage:       "play <URL または検索語>",
			Description: "音声を再生します",
			MinArgs:     1,
			MaxArgs:     -1,
			Handler:     b.Voice.Play,
		},
		{
			Name:        "stop",
			Usage:       "stop",
			Description: "再生を止めて切断します",
			MaxArgs:     0,
			Handler:     b.Voice.Stop,
		},
		{
			Name:        "help",
			Usage:       "help",
			Description: "コマンド一覧を表示します",
			MaxArgs:     -1,
			Handler:     b.help,
		},
	}
}

func (b *Bot) help(_ context.Context, _ chat.Event) (chat.Message, error) {
	var sb strings.Builder
	sb.WriteString("利用できるコマンド:\n")
	for _, c := range b.Router.Commands() {
		fmt.Fprintf(&sb, "\n%s%s\n - %s", b.Router.Prefix(), c.Usage, c.Description)
	}
	return chat.Message{Text: sb.String()}, nil
}
