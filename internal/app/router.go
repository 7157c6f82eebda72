package app

import (
	"context"
	"strings"

	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Fixed replies shared by every command.
const (
	replyDenied       = "このコマンドを実行する権限がありません。"
	replyGenericError = "エラーが発生しました"
)

// CommandFunc handles a parsed command. A zero Message sends nothing.
type CommandFunc func(ctx context.Context, ev chat.Event) (chat.Message, error)

// Command is one entry of the command table.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	MinArgs     int
	// MaxArgs < 0 means unbounded.
	MaxArgs    int
	Permission chat.Permission
	Handler    CommandFunc
}

// Router resolves command events against the command table.
type Router struct {
	prefix   string
	guilds   chat.Guilds
	commands map[string]*Command
	ordered  []*Command
	logger   *logrus.Entry
}

func NewRouter(prefix string, guilds chat.Guilds, logger *logrus.Entry) *Router {
	return &Router{
		prefix:   prefix,
		guilds:   guilds,
		commands: make(map[string]*Command),
		logger:   logger,
	}
}

func (r *Router) Register(cmds ...*Command) {
	for _, c := range cmds {
		r.ordered = append(r.ordered, c)
		r.commands[c.Name] = c
		for _, alias := range c.Aliases {
			r.commands[alias] = c
		}
	}
}

// Commands returns the table in registration order.
func (r *Router) Commands() []*Command {
	return r.ordered
}

func (r *Router) Prefix() string {
	return r.prefix
}

// Handle is the dispatcher handler for command events. Unknown commands are ignored.
func (r *Router) Handle(ctx context.Context, ev chat.Event) error {
	cmd, ok := r.commands[strings.ToLower(ev.Command)]
	if !ok {
		return nil
	}

	logCtx := r.logger.WithFields(logrus.Fields{
		"command":   cmd.Name,
		"sender_id": ev.User.ID,
		"guild_id":  ev.GuildID,
	})
	logCtx.Info("Command received")

	if ev.Args == nil && strings.TrimSpace(ev.RawArgs) != "" {
		args, err := splitArgs(ev.RawArgs)
		if err != nil {
			logCtx.WithError(err).Warn("Could not parse command arguments")
			metrics.Commands.WithLabelValues(cmd.Name, metrics.OutcomeUsage).Inc()
			return r.reply(ev, r.usage(cmd))
		}
		ev.Args = args
	}

	if cmd.Permission != chat.PermissionNone {
		allowed, err := r.guilds.HasPermission(ctx, ev.GuildID, ev.Channel, ev.User.ID, cmd.Permission)
		if err != nil {
			logCtx.WithError(err).Error("Permission check failed")
			metrics.Commands.WithLabelValues(cmd.Name, metrics.OutcomeError).Inc()
			return r.reply(ev, chat.Text(replyGenericError))
		}
		if !allowed {
			logCtx.WithField("permission", cmd.Permission.String()).Warn("Unauthorized access attempt")
			metrics.Commands.WithLabelValues(cmd.Name, metrics.OutcomeDenied).Inc()
			return r.reply(ev, chat.Text(replyDenied))
		}
	}

	if len(ev.Args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(ev.Args) > cmd.MaxArgs) {
		logCtx.WithField("args_count", len(ev.Args)).Warn("Invalid command format")
		metrics.Commands.WithLabelValues(cmd.Name, metrics.OutcomeUsage).Inc()
		return r.reply(ev, r.usage(cmd))
	}

	msg, err := cmd.Handler(ctx, ev)
	if err != nil {
		logCtx.WithError(err).Error("Command failed")
		metrics.Commands.WithLabelValues(cmd.Name, metrics.OutcomeError).Inc()
		return r.reply(ev, chat.Text(replyGenericError))
	}
	metrics.Commands.WithLabelValues(cmd.Name, metrics.OutcomeOK).Inc()

	if msg.IsZero() {
		return nil
	}
	return r.reply(ev, msg)
}

func (r *Router) usage(cmd *Command) chat.Message {
	return chat.Text("使い方: %s%s", r.prefix, cmd.Usage)
}

func (r *Router) reply(ev chat.Event, msg chat.Message) error {
	if ev.Responder == nil {
		return nil
	}
	return ev.Responder.Reply(msg)
}
