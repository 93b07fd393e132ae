package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/internal/config"
	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/internal/repository/repotest"
)

type emitted struct {
	Room    string
	Event   string
	Payload interface{}
}

type joined struct {
	UserId string
	Room   string
}

// recordingPusher captures every event a service publishes
type recordingPusher struct {
	mu     sync.Mutex
	events []emitted
	joins  []joined
}

func (p *recordingPusher) Emit(room, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, emitted{Room: room, Event: event, Payload: payload})
}

func (p *recordingPusher) JoinUser(userId, room string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joins = append(p.joins, joined{UserId: userId, Room: room})
}

func (p *recordingPusher) byEvent(event string) []emitted {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []emitted
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (p *recordingPusher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
	p.joins = nil
}

type testEnv struct {
	repos  *repository.Repositories
	pusher *recordingPusher
	conv   *ConversationService
	msg    *MessageService
	notif  *NotificationService
	auth   *AuthService
	users  *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := repotest.NewRepositories(t)
	return newTestEnvWithRepos(t, repos)
}

func newTestEnvWithRepos(t *testing.T, repos *repository.Repositories) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.SetDefaults()

	env := &testEnv{
		repos:  repos,
		pusher: &recordingPusher{},
		conv:   NewConversationService(repos),
		msg:    NewMessageService(repos),
		notif:  NewNotificationService(repos),
		auth:   NewAuthService(repos, cfg),
		users:  NewUserService(repos),
	}
	env.conv.SetPusher(env.pusher)
	env.msg.SetPusher(env.pusher)
	env.notif.SetPusher(env.pusher)
	return env
}

func (env *testEnv) seedUser(t *testing.T, id, role string) *entity.User {
	t.Helper()
	u := &entity.User{Id: id, Email: id + "@example.com", Name: id, Role: role}
	require.NoError(t, env.repos.User.Create(context.Background(), u))
	return u
}
