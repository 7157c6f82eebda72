package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/domain/progress"

	"github.com/sirupsen/logrus"
)

const (
	replyProgressDisabled = "進捗管理機能は現在利用できません。"
	replyInvalidCount     = "文字数は正の整数で指定してください。"
	replyInvalidGoal      = "目標文字数は正の整数で指定してください。"
	replyInvalidDeadline  = "締切は YYYY-MM-DD 形式で指定してください。"

	statusStarted  = "着手中"
	deadlineLayout = "2006-01-02"
)

const (
	colorWorkStart = 0x00ff00
	colorWrite     = 0x3498db
	colorCheck     = 0xe67e22
)

// ProgressService implements the writing progress commands.
// A nil repository disables every command that needs storage.
type ProgressService struct {
	repo   progress.Repository
	loc    *time.Location
	now    func() time.Time
	logger *logrus.Entry
}

func NewProgressService(repo progress.Repository, loc *time.Location, logger *logrus.Entry) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

func (s *ProgressService) today() time.Time {
	return s.now().In(s.loc)
}

// WorkStart announces a writing session. Nothing is stored.
func (s *ProgressService) WorkStart(_ context.Context, ev chat.Event) (chat.Message, error) {
	title := ev.Args[0]
	card := &chat.Card{Title: fmt.Sprintf("【執筆開始】%s", title), Color: colorWorkStart}
	card.AddField("開始時刻", s.today().Format("15:04"), true).
		AddField("ステータス", statusStarted, true)
	return card.Message(), nil
}

// Write logs a session for the caller and reports the running total for the title.
func (s *ProgressService) Write(ctx context.Context, ev chat.Event) (chat.Message, error) {
	if s.repo == nil {
		return chat.Text(replyProgressDisabled), nil
	}
	title := ev.Args[0]
	count, err := strconv.Atoi(ev.Args[1])
	if err != nil || count <= 0 {
		return chat.Text(replyInvalidCount), nil
	}

	entry := &progress.Entry{
		LoggedAt:   s.today(),
		AuthorName: ev.User.Name,
		WorkTitle:  title,
		CharCount:  count,
	}
	if err := s.repo.AppendEntry(ctx, entry); err != nil {
		return chat.Message{}, err
	}

	entries, err := s.repo.ListEntries(ctx, progress.EntryFilter{AuthorName: ev.User.Name, WorkTitle: title})
	if err != nil {
		return chat.Message{}, err
	}
	total := progress.Total(entries)

	s.logger.WithFields(logrus.Fields{
		"author": ev.User.Name,
		"title":  title,
		"count":  count,
		"total":  total,
	}).Info("Progress entry logged")

	card := &chat.Card{Title: fmt.Sprintf("【執筆記録】%s", title), Color: colorWrite}
	card.AddField("今回", fmt.Sprintf("%d文字", count), true).
		AddField("累計", fmt.Sprintf("%d文字", total), true).
		AddField("記録者", ev.User.Name, true)
	return card.Message(), nil
}

// Stats sums the caller's logged counts, optionally for a single title.
func (s *ProgressService) Stats(ctx context.Context, ev chat.Event) (chat.Message, error) {
	if s.repo == nil {
		return chat.Text(replyProgressDisabled), nil
	}
	filter := progress.EntryFilter{AuthorName: ev.User.Name}
	if len(ev.Args) > 0 {
		filter.WorkTitle = ev.Args[0]
	}
	entries, err := s.repo.ListEntries(ctx, filter)
	if err != nil {
		return chat.Message{}, err
	}
	total := progress.Total(entries)
	if filter.WorkTitle != "" {
		return chat.Text("%s さんの「%s」の累計文字数: %d文字", ev.User.Name, filter.WorkTitle, total), nil
	}
	return chat.Text("%s さんの累計文字数: %d文字", ev.User.Name, total), nil
}

// Entry registers a work definition.
func (s *ProgressService) Entry(ctx context.Context, ev chat.Event) (chat.Message, error) {
	if s.repo == nil {
		return chat.Text(replyProgressDisabled), nil
	}
	title, theme := ev.Args[0], ev.Args[1]
	goal, err := strconv.Atoi(ev.Args[2])
	if err != nil || goal <= 0 {
		return chat.Text(replyInvalidGoal), nil
	}
	deadline, err := time.ParseInLocation(deadlineLayout, strings.TrimSpace(ev.Args[3]), s.loc)
	if err != nil {
		return chat.Text(replyInvalidDeadline), nil
	}

	w := &progress.Work{
		Title:     title,
		Theme:     theme,
		GoalCount: goal,
		Deadline:  deadline,
		Status:    progress.StatusWriting,
	}
	if err := s.repo.AppendWork(ctx, w); err != nil {
		return chat.Message{}, err
	}
	s.logger.WithFields(logrus.Fields{"title": title, "goal": goal}).Info("Work registered")
	return chat.Text("作品「%s」を登録しました。（目標: %d文字 / 締切: %s）", title, goal, deadline.Format(deadlineLayout)), nil
}

// Check reports progress of a registered work against its goal and deadline.
// Every author's entries for the title count toward the work.
func (s *ProgressService) Check(ctx context.Context, ev chat.Event) (chat.Message, error) {
	if s.repo == nil {
		return chat.Text(replyProgressDisabled), nil
	}
	title := ev.Args[0]
	w, err := s.repo.FindWork(ctx, title)
	if err != nil {
		if errors.Is(err, progress.ErrWorkNotFound) {
			return chat.Text("作品「%s」は登録されていません。", title), nil
		}
		return chat.Message{}, err
	}

	entries, err := s.repo.ListEntries(ctx, progress.EntryFilter{WorkTitle: title})
	if err != nil {
		return chat.Message{}, err
	}
	a := progress.Analyze(w, progress.Total(entries), s.today())

	card := &chat.Card{Title: fmt.Sprintf("【進捗確認】%s", title), Color: colorCheck}
	card.AddField("進捗", fmt.Sprintf("%s %.1f%%", progress.Bar(a.Percent), a.Percent), false).
		AddField("現在", fmt.Sprintf("%d / %d文字", a.Current, a.Goal), true).
		AddField("残り日数", fmt.Sprintf("%d日", a.DaysLeft), true).
		AddField("必要ペース", fmt.Sprintf("%d文字/日", a.RequiredPace), true)
	return card.Message(), nil
}
