package app

import (
	"context"
	"errors"
	"fmt"

	"writer_digest_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
)

// WelcomeService greets new members and grants them the welcome role.
type WelcomeService struct {
	platform chat.Platform
	roleName string
	logger   *logrus.Entry
}

func NewWelcomeService(platform chat.Platform, roleName string, logger *logrus.Entry) *WelcomeService {
	return &WelcomeService{platform: platform, roleName: roleName, logger: logger}
}

// HandleJoin posts the welcome message to the system channel, then grants the
// role. A missing channel or role is skipped without error.
func (s *WelcomeService) HandleJoin(ctx context.Context, ev chat.Event) error {
	logCtx := s.logger.WithFields(logrus.Fields{"guild_id": ev.GuildID, "user_id": ev.User.ID})

	var errs []error

	dest, ok, err := s.platform.SystemChannel(ctx, ev.GuildID)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("failed to look up system channel: %w", err))
	case !ok:
		logCtx.Debug("Guild has no system channel. Skipping welcome message.")
	default:
		if err := s.platform.Send(ctx, dest, chat.Text("%s さん、サーバーへようこそ！", ev.User.Mention)); err != nil {
			errs = append(errs, fmt.Errorf("failed to send welcome message: %w", err))
		}
	}

	if s.roleName == "" {
		return errors.Join(errs...)
	}
	roleID, err := s.platform.FindRole(ctx, ev.GuildID, s.roleName)
	switch {
	case errors.Is(err, chat.ErrRoleNotFound), errors.Is(err, chat.ErrUnsupported):
		logCtx.WithField("role", s.roleName).Debug("Welcome role not available. Skipping.")
	case err != nil:
		errs = append(errs, fmt.Errorf("failed to look up role %q: %w", s.roleName, err))
	default:
		if err := s.platform.GrantRole(ctx, ev.GuildID, ev.User.ID, roleID); err != nil {
			errs = append(errs, fmt.Errorf("failed to grant role %q: %w", s.roleName, err))
		} else {
			logCtx.WithField("role", s.roleName).Info("Welcome role granted")
		}
	}
	return errors.Join(errs...)
}

// HandleReady logs the connected bot identity.
func (s *WelcomeService) HandleReady(_ context.Context, ev chat.Event) error {
	s.logger.Infof("Logged in as %s (ID: %s)", ev.User.Name, ev.User.ID)
	return nil
}
