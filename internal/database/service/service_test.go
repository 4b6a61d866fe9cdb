package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/database/dbtest"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// recorder captures everything the services hand to the dispatcher.
type recorder struct {
	mu            sync.Mutex
	notifications []*types.Notification
	messages      []*realtime.Message
}

func (r *recorder) Enqueue(n *types.Notification, _ ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) Push(msg *realtime.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recorder) ofType(recipientID int64, typ enum.NotificationType) []*types.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*types.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) events(event string) []*realtime.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*realtime.Message
	for _, m := range r.messages {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	db       *bun.DB
	repo     *database.Repository
	service  *database.Service
	recorder *recorder
}

func setupTest(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	logger := zap.NewNop()
	repo := database.NewRepository(db, logger)
	rec := &recorder{}

	return &fixture{
		db:       db,
		repo:     repo,
		service:  database.NewService(db, repo, rec, 30*time.Minute, logger),
		recorder: rec,
	}
}

// withoutBadges deactivates the seeded catalog so badge bonuses do not
// mix into reputation totals.
func (f *fixture) withoutBadges(t *testing.T) *fixture {
	t.Helper()

	_, err := f.db.NewUpdate().
		Model((*types.Badge)(nil)).
		Set("is_active = ?", false).
		Where("1 = 1").
		Exec(t.Context())
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, name string) *types.User {
	t.Helper()

	u := &types.User{Name: name}
	require.NoError(t, f.repo.User().CreateUser(t.Context(), u))
	return u
}

func (f *fixture) question(t *testing.T, owner *types.User) *types.Question {
	t.Helper()

	q, err := f.service.Content().CreateQuestion(t.Context(), owner.ID, "How do I vote?", "Explain the rules.")
	require.NoError(t, err)
	return q
}

func (f *fixture) answer(t *testing.T, owner *types.User, q *types.Question) *types.Answer {
	t.Helper()

	a, err := f.service.Content().PostAnswer(t.Context(), owner.ID, q.ID, "Click the arrow.")
	require.NoError(t, err)
	return a
}

func (f *fixture) reputation(t *testing.T, u *types.User) int {
	t.Helper()

	got, err := f.repo.User().GetUserByID(t.Context(), u.ID)
	require.NoError(t, err)
	return got.Reputation
}

func (f *fixture) history(t *testing.T, u *types.User) []*types.ReputationHistory {
	t.Helper()

	entries, err := f.service.Reputation().History(t.Context(), u.ID, 0, 0)
	require.NoError(t, err)
	return entries
}
