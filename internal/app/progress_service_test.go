package app

import (
	"context"
	"testing"
	"time"

	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/domain/progress"
	"writer_digest_bot/internal/infra/logger"
	"writer_digest_bot/internal/infra/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProgress(repo progress.Repository, now time.Time) *ProgressService {
	svc := NewProgressService(repo, jst, logger.Discard())
	svc.now = func() time.Time { return now }
	return svc
}

func progressEvent(name string, args ...string) chat.Event {
	return chat.Event{Kind: chat.EventCommand, Command: name, Args: args, User: chat.User{ID: "u1", Name: "ミナ"}}
}

func TestProgress_WorkStartCard(t *testing.T) {
	svc := newTestProgress(nil, time.Date(2026, 10, 14, 21, 5, 0, 0, jst))

	msg, err := svc.WorkStart(context.Background(), progressEvent("work_start", "星の海"))
	require.NoError(t, err)
	require.NotNil(t, msg.Card)
	assert.Equal(t, "【執筆開始】星の海", msg.Card.Title)
	assert.Equal(t, 0x00ff00, msg.Card.Color)
	assert.Equal(t, []chat.Field{
		{Name: "開始時刻", Value: "21:05", Inline: true},
		{Name: "ステータス", Value: "着手中", Inline: true},
	}, msg.Card.Fields)
}

func TestProgress_WriteReportsRunningTotal(t *testing.T) {
	repo := memstore.NewProgressRepository()
	svc := newTestProgress(repo, time.Date(2026, 10, 14, 21, 0, 0, 0, jst))
	ctx := context.Background()

	_, err := svc.Write(ctx, progressEvent("write", "星の海", "1200"))
	require.NoError(t, err)
	msg, err := svc.Write(ctx, progressEvent("write", "星の海", "800"))
	require.NoError(t, err)

	require.NotNil(t, msg.Card)
	assert.Equal(t, "800文字", msg.Card.Fields[0].Value)
	assert.Equal(t, "2000文字", msg.Card.Fields[1].Value)

	stats, err := svc.Stats(ctx, progressEvent("stats"))
	require.NoError(t, err)
	assert.Equal(t, "ミナ さんの累計文字数: 2000文字", stats.Text)
}

func TestProgress_StatsFiltersByTitle(t *testing.T) {
	repo := memstore.NewProgressRepository()
	svc := newTestProgress(repo, time.Now())
	ctx := context.Background()

	_, err := svc.Write(ctx, progressEvent("write", "星の海", "1000"))
	require.NoError(t, err)
	_, err = svc.Write(ctx, progressEvent("write", "月の庭", "500"))
	require.NoError(t, err)

	msg, err := svc.Stats(ctx, progressEvent("stats", "月の庭"))
	require.NoError(t, err)
	assert.Equal(t, "ミナ さんの「月の庭」の累計文字数: 500文字", msg.Text)
}

func TestProgress_WriteRejectsBadCount(t *testing.T) {
	repo := memstore.NewProgressRepository()
	svc := newTestProgress(repo, time.Now())

	for _, count := range []string{"abc", "0", "-5"} {
		msg, err := svc.Write(context.Background(), progressEvent("write", "星の海", count))
		require.NoError(t, err)
		assert.Equal(t, replyInvalidCount, msg.Text, count)
	}
	entries, err := repo.ListEntries(context.Background(), progress.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProgress_EntryThenCheck(t *testing.T) {
	repo := memstore.NewProgressRepository()
	svc := newTestProgress(repo, time.Date(2026, 10, 14, 12, 0, 0, 0, jst))
	ctx := context.Background()

	msg, err := svc.Entry(ctx, progressEvent("entry", "星の海", "冒険", "10000", "2026-10-20"))
	require.NoError(t, err)
	assert.Equal(t, "作品「星の海」を登録しました。（目標: 10000文字 / 締切: 2026-10-20）", msg.Text)

	_, err = svc.Write(ctx, progressEvent("write", "星の海", "4000"))
	require.NoError(t, err)

	msg, err = svc.Check(ctx, progressEvent("check", "星の海"))
	require.NoError(t, err)
	require.NotNil(t, msg.Card)
	assert.Equal(t, "【進捗確認】星の海", msg.Card.Title)
	assert.Equal(t, "■■■■□□□□□□ 40.0%", msg.Card.Fields[0].Value)
	assert.Equal(t, "4000 / 10000文字", msg.Card.Fields[1].Value)
	assert.Equal(t, "6日", msg.Card.Fields[2].Value)
	assert.Equal(t, "1000文字/日", msg.Card.Fields[3].Value)
}

func TestProgress_CheckPastDeadlineDemandsRemainder(t *testing.T) {
	repo := memstore.NewProgressRepository()
	svc := newTestProgress(repo, time.Date(2026, 10, 25, 12, 0, 0, 0, jst))
	ctx := context.Background()

	require.NoError(t, repo.AppendWork(ctx, &progress.Work{
		Title: "星の海", GoalCount: 10000, Deadline: time.Date(2026, 10, 20, 0, 0, 0, 0, jst),
	}))

	msg, err := svc.Check(ctx, progressEvent("check", "星の海"))
	require.NoError(t, err)
	assert.Equal(t, "0日", msg.Card.Fields[2].Value)
	assert.Equal(t, "10000文字/日", msg.Card.Fields[3].Value)
}

func TestProgress_CheckUnknownWork(t *testing.T) {
	svc := newTestProgress(memstore.NewProgressRepository(), time.Now())

	msg, err := svc.Check(context.Background(), progressEvent("check", "月の庭"))
	require.NoError(t, err)
	assert.Equal(t, "作品「月の庭」は登録されていません。", msg.Text)
}

func TestProgress_EntryValidation(t *testing.T) {
	svc := newTestProgress(memstore.NewProgressRepository(), time.Now())
	ctx := context.Background()

	msg, err := svc.Entry(ctx, progressEvent("entry", "星の海", "冒険", "many", "2026-10-20"))
	require.NoError(t, err)
	assert.Equal(t, replyInvalidGoal, msg.Text)

	msg, err = svc.Entry(ctx, progressEvent("entry", "星の海", "冒険", "100", "10/20"))
	require.NoError(t, err)
	assert.Equal(t, replyInvalidDeadline, msg.Text)
}

func TestProgress_DisabledWithoutRepository(t *testing.T) {
	svc := newTestProgress(nil, time.Now())
	ctx := context.Background()

	for _, call := range []func(context.Context, chat.Event) (chat.Message, error){svc.Write, svc.Stats, svc.Entry, svc.Check} {
		msg, err := call(ctx, progressEvent("x", "a", "1", "1", "2026-01-01"))
		require.NoError(t, err)
		assert.Equal(t, replyProgressDisabled, msg.Text)
	}
}
