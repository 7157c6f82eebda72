package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/domain/digest"
	"writer_digest_bot/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Failure notices posted in place of a card when a sub-action cannot produce one.
const (
	noticeWeatherFailed = "天気情報を取得できませんでした。"
	noticeNewsFailed    = "ニュースを取得できませんでした。"
)

const (
	colorGreeting = 0xffcc00
	colorWeather  = 0x3498db
	colorNews     = 0xe74c3c
)

// DigestService posts the daily greeting, weather and news.
// Each sub-action succeeds or fails on its own.
type DigestService struct {
	sender    chat.Sender
	weather   digest.WeatherSource
	news      digest.NewsSource
	ledger    digest.RunLedger
	targets   digest.Targets
	newsCount int
	loc       *time.Location
	now       func() time.Time
	logger    *logrus.Entry
}

func NewDigestService(
	sender chat.Sender,
	weather digest.WeatherSource,
	news digest.NewsSource,
	ledger digest.RunLedger,
	targets digest.Targets,
	newsCount int,
	loc *time.Location,
	logger *logrus.Entry,
) *DigestService {
	if loc == nil {
		loc = time.UTC
	}
	return &DigestService{
		sender:    sender,
		weather:   weather,
		news:      news,
		ledger:    ledger,
		targets:   targets,
		newsCount: newsCount,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// HandleTick is the dispatcher handler for the daily timer.
// A day already claimed in the ledger is not posted again.
func (s *DigestService) HandleTick(ctx context.Context, ev chat.Event) error {
	at := ev.At
	if at.IsZero() {
		at = s.now()
	}
	at = at.In(s.loc)
	runID := uuid.NewString()
	logCtx := s.logger.WithFields(logrus.Fields{"run_id": runID, "date": digest.DayKey(at)})

	if s.ledger != nil {
		claimed, err := s.ledger.Claim(ctx, at, runID)
		switch {
		case err != nil:
			logCtx.WithError(err).Warn("Run ledger unavailable, posting digest anyway")
		case !claimed:
			logCtx.Info("Digest already posted today. Skipping.")
			metrics.DigestRuns.WithLabelValues(metrics.OutcomeSkipped).Inc()
			return nil
		}
	}

	run := s.Run(ctx, runID, at)

	failed := 0
	for _, res := range run.Results {
		if !res.Skipped && (res.Failed() || !res.Delivered) {
			failed++
		}
	}
	if failed > 0 {
		metrics.DigestRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
	} else {
		metrics.DigestRuns.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	logCtx.WithField("failed", failed).Info("Daily digest finished")
	return nil
}

// Run executes every sub-action for the given time and returns their results.
func (s *DigestService) Run(ctx context.Context, runID string, at time.Time) *digest.Run {
	run := &digest.Run{ID: runID, Date: at}
	for _, role := range digest.Roles {
		run.Results = append(run.Results, s.runSubAction(ctx, role, at))
	}
	return run
}

func (s *DigestService) runSubAction(ctx context.Context, role digest.Role, at time.Time) digest.Result {
	logCtx := s.logger.WithField("role", role)

	dest := s.targets[role]
	if dest == "" {
		logCtx.Debug("No destination configured. Skipping.")
		metrics.DigestSubActions.WithLabelValues(string(role), metrics.OutcomeSkipped).Inc()
		return digest.Result{Role: role, Skipped: true}
	}
	ok, err := s.sender.Resolve(ctx, dest)
	if err != nil || !ok {
		logCtx.WithError(err).WithField("destination", dest).Debug("Destination not resolvable. Skipping.")
		metrics.DigestSubActions.WithLabelValues(string(role), metrics.OutcomeSkipped).Inc()
		return digest.Result{Role: role, Skipped: true}
	}

	res := s.produce(ctx, role, at)
	msg := res.Payload
	if res.Failed() {
		logCtx.WithError(res.Reason).Warn("Digest sub-action failed, posting notice")
		msg = chat.Message{Text: failureNotice(role)}
	}

	if err := s.sender.Send(ctx, dest, msg); err != nil {
		logCtx.WithError(err).WithField("destination", dest).Error("Failed to send digest message")
		metrics.DigestSubActions.WithLabelValues(string(role), metrics.OutcomeError).Inc()
		return res
	}
	res.Delivered = true

	outcome := metrics.OutcomeSent
	if res.Failed() {
		outcome = metrics.OutcomeFailed
	}
	metrics.DigestSubActions.WithLabelValues(string(role), outcome).Inc()
	return res
}

// produce builds the payload for role. A panic inside a source counts as a failure.
func (s *DigestService) produce(ctx context.Context, role digest.Role, at time.Time) (res digest.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = digest.Failure(role, fmt.Errorf("%s source panicked: %v", role, r))
		}
	}()

	switch role {
	case digest.RoleGreeting:
		return digest.Success(role, greetingCard(at))
	case digest.RoleWeather:
		if s.weather == nil {
			return digest.Failure(role, fmt.Errorf("weather source not configured"))
		}
		fc, err := s.weather.Today(ctx)
		if err != nil {
			return digest.Failure(role, err)
		}
		return digest.Success(role, weatherCard(fc))
	case digest.RoleNews:
		if s.news == nil {
			return digest.Failure(role, fmt.Errorf("news source not configured"))
		}
		items, err := s.news.Top(ctx, s.newsCount)
		if err != nil {
			return digest.Failure(role, err)
		}
		if len(items) == 0 {
			return digest.Failure(role, fmt.Errorf("no headlines"))
		}
		return digest.Success(role, newsCard(items))
	}
	return digest.Failure(role, fmt.Errorf("unknown digest role %q", role))
}

func failureNotice(role digest.Role) string {
	switch role {
	case digest.RoleWeather:
		return noticeWeatherFailed
	case digest.RoleNews:
		return noticeNewsFailed
	}
	return replyGenericError
}

func greetingCard(at time.Time) chat.Message {
	card := &chat.Card{Title: "☀️ おはようございます！", Color: colorGreeting, Footer: "今日も一日頑張りましょう！"}
	card.AddField("📅 日付", at.Format("2006/01/02"), false)
	return card.Message()
}

func weatherCard(fc *digest.Forecast) chat.Message {
	card := &chat.Card{Title: "🌡️ 今日の気温", Color: colorWeather}
	if fc.HasCode {
		card.AddField("天気", digest.Describe(fc.WeatherCode), false)
	}
	card.AddField("気温", fmt.Sprintf("最高: %s℃ / 最低: %s℃", formatTemp(fc.MaxTemp), formatTemp(fc.MinTemp)), false)
	return card.Message()
}

func newsCard(items []digest.Headline) chat.Message {
	lines := make([]string, 0, len(items))
	for _, h := range items {
		lines = append(lines, "・"+chat.Link(h.Title, h.Link))
	}
	return (&chat.Card{Title: "📰 主要ニュース", Description: strings.Join(lines, "\n"), Color: colorNews}).Message()
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
