package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/domain/digest"
)

type sent struct {
	Dest chat.Destination
	Msg  chat.Message
}

// fakePlatform records outbound calls. Zero values behave like a healthy server.
type fakePlatform struct {
	mu sync.Mutex

	sent       []sent
	sendErr    map[chat.Destination]error
	unresolved map[chat.Destination]bool

	systemChannel chat.Destination
	roles         map[string]string
	granted       []string
	channels      []string
	members       map[string]chat.User
	kicked        []string
	kickReasons   []string
	allowed       map[string]bool
	permErr       error
	latency       time.Duration

	voiceChannel string
	voiceErr     error
	playing      []chat.Track
	left         int
	onDone       func(error)
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		sendErr:    map[chat.Destination]error{},
		unresolved: map[chat.Destination]bool{},
		roles:      map[string]string{},
		members:    map[string]chat.User{},
		allowed:    map[string]bool{},
	}
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) Send(_ context.Context, dest chat.Destination, msg chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[dest]; err != nil {
		return err
	}
	f.sent = append(f.sent, sent{Dest: dest, Msg: msg})
	return nil
}

func (f *fakePlatform) Resolve(_ context.Context, dest chat.Destination) (bool, error) {
	return !f.unresolved[dest], nil
}

func (f *fakePlatform) sentTo(dest chat.Destination) []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Message
	for _, s := range f.sent {
		if s.Dest == dest {
			out = append(out, s.Msg)
		}
	}
	return out
}

func (f *fakePlatform) SystemChannel(_ context.Context, _ string) (chat.Destination, bool, error) {
	return f.systemChannel, f.systemChannel != "", nil
}

func (f *fakePlatform) FindRole(_ context.Context, _ string, name string) (string, error) {
	id, ok := f.roles[name]
	if !ok {
		return "", chat.ErrRoleNotFound
	}
	return id, nil
}

func (f *fakePlatform) GrantRole(_ context.Context, _ string, userID, roleID string) error {
	f.granted = append(f.granted, userID+":"+roleID)
	return nil
}

func (f *fakePlatform) CreateChannel(_ context.Context, _ string, name string) error {
	f.channels = append(f.channels, name)
	return nil
}

func (f *fakePlatform) ResolveMember(_ context.Context, _ string, ref string) (chat.User, error) {
	u, ok := f.members[ref]
	if !ok {
		return chat.User{}, chat.ErrMemberNotFound
	}
	return u, nil
}

func (f *fakePlatform) Kick(_ context.Context, _ string, userID, reason string) error {
	f.kicked = append(f.kicked, userID)
	f.kickReasons = append(f.kickReasons, reason)
	return nil
}

func (f *fakePlatform) HasPermission(_ context.Context, _ string, _ chat.Destination, userID string, _ chat.Permission) (bool, error) {
	if f.permErr != nil {
		return false, f.permErr
	}
	return f.allowed[userID], nil
}

func (f *fakePlatform) Latency(_ context.Context) (time.Duration, error) {
	return f.latency, nil
}

func (f *fakePlatform) Join(_ context.Context, _ string, _ string) (string, error) {
	if f.voiceErr != nil {
		return "", f.voiceErr
	}
	return f.voiceChannel, nil
}

func (f *fakePlatform) Play(_ context.Context, _ string, track chat.Track, onDone func(error)) error {
	if f.voiceErr != nil {
		return f.voiceErr
	}
	f.playing = append(f.playing, track)
	f.onDone = onDone
	return nil
}

func (f *fakePlatform) Leave(_ context.Context, _ string) error {
	if f.voiceErr != nil {
		return f.voiceErr
	}
	if f.voiceChannel == "" {
		return chat.ErrNotConnected
	}
	f.left++
	return nil
}

type recorder struct {
	replies []chat.Message
}

func (r *recorder) Reply(msg chat.Message) error {
	r.replies = append(r.replies, msg)
	return nil
}

func (r *recorder) last() chat.Message {
	if len(r.replies) == 0 {
		return chat.Message{}
	}
	return r.replies[len(r.replies)-1]
}

type stubWeather struct {
	fc    *digest.Forecast
	err   error
	calls int
}

func (s *stubWeather) Today(context.Context) (*digest.Forecast, error) {
	s.calls++
	return s.fc, s.err
}

type stubNews struct {
	items []digest.Headline
	err   error
	limit int
	panic bool
}

func (s *stubNews) Top(_ context.Context, limit int) ([]digest.Headline, error) {
	if s.panic {
		panic("feed exploded")
	}
	s.limit = limit
	if len(s.items) > limit {
		return s.items[:limit], s.err
	}
	return s.items, s.err
}

type stubLedger struct {
	claimed map[string]bool
	err     error
}

func (l *stubLedger) Claim(_ context.Context, day time.Time, _ string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	key := digest.DayKey(day)
	if l.claimed[key] {
		return false, nil
	}
	l.claimed[key] = true
	return true, nil
}

type stubResolver struct {
	track chat.Track
	err   error
	query string
}

func (s *stubResolver) Resolve(_ context.Context, query string) (chat.Track, error) {
	s.query = query
	return s.track, s.err
}

var errBoom = errors.New("boom")
