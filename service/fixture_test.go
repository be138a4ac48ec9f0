package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/taskboard/adapters/memory"
	"github.com/layer-3/taskboard/adapters/store"
	"github.com/layer-3/taskboard/adapters/tokenizer"
	"github.com/layer-3/taskboard/core"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "service-test-secret-service-test-secret"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu      sync.Mutex
	err     error
	logouts []string // userID/tokenID
	deleted []string
}

func (p *recordingPublisher) PublishLogout(_ context.Context, userID, tokenID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.logouts = append(p.logouts, userID+"/"+tokenID)
	return nil
}

func (p *recordingPublisher) PublishUserDeleted(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.deleted = append(p.deleted, userID)
	return nil
}

// unreachableStore answers like a revocation store whose backend is down.
type unreachableStore struct{}

var errStoreDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

func (unreachableStore) Revoke(context.Context, string, time.Duration) error { return errStoreDown }
func (unreachableStore) IsRevoked(context.Context, string) (bool, error)     { return true, errStoreDown }

type fixture struct {
	clock     *fakeClock
	users     *memory.UserRepository
	tasks     *memory.TaskRepository
	store     *store.MemoryStore
	publisher *recordingPublisher
	tokens    *tokenizer.JWTTokenizer

	gate  *Gate
	auth  *AuthService
	task  *TaskService
	admin *AdminService
}

func newFixture(t *testing.T, opts ...tokenizer.Option) *fixture {
	t.Helper()

	f := &fixture{
		clock:     &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		users:     memory.NewUserRepository(),
		tasks:     memory.NewTaskRepository(),
		publisher: &recordingPublisher{},
	}
	f.store = store.NewMemoryStore(f.clock.Now)

	tokens, err := tokenizer.NewJWTTokenizer(testSecret, append([]tokenizer.Option{tokenizer.WithClock(f.clock.Now)}, opts...)...)
	require.NoError(t, err)
	f.tokens = tokens

	f.gate = NewGate(f.tokens, f.store, f.users)
	f.auth = NewAuthService(f.users, f.tokens, f.store, f.publisher)
	f.auth.hashCost = bcrypt.MinCost
	f.auth.now = f.clock.Now
	f.task = NewTaskService(f.tasks, f.users)
	f.admin = NewAdminService(f.users, f.publisher)
	f.admin.hashCost = bcrypt.MinCost

	return f
}

func (f *fixture) register(t *testing.T, name, email string) *Session {
	t.Helper()
	s, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return s
}

func (f *fixture) principal(t *testing.T, token string) core.Principal {
	t.Helper()
	p, err := f.gate.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	return p
}
