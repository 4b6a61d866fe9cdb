package service_test

import (
	"context"
	"testing"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) badgeID(t *testing.T, name string) int64 {
	t.Helper()

	badges, err := f.repo.Badge().GetActiveBadges(t.Context())
	require.NoError(t, err)

	for _, b := range badges {
		if b.Name == name {
			return b.ID
		}
	}
	t.Fatalf("badge %q not seeded", name)
	return 0
}

func TestAwardBadgeOnce(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	u := f.user(t, "alice")
	editor := f.badgeID(t, "Editor")

	awarded, err := f.service.Badge().AwardBadge(ctx, u.ID, editor, "manual")
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = f.service.Badge().AwardBadge(ctx, u.ID, editor, "manual")
	require.NoError(t, err)
	assert.False(t, awarded)

	count, err := f.repo.Badge().CountAssignments(ctx, u.ID, editor)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries := f.history(t, u)
	require.Len(t, entries, 1)
	assert.Equal(t, enum.ReputationReasonBadgeAwarded, entries[0].Reason)
	assert.Equal(t, 5, entries[0].Amount)
	assert.Equal(t, editor, entries[0].RelatedID)
	assert.Equal(t, 5, f.reputation(t, u))

	assert.Len(t, f.recorder.ofType(u.ID, enum.NotificationTypeBadgeAwarded), 1)
}

func TestAwardBadgeUnknown(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	u := f.user(t, "alice")

	_, err := f.service.Badge().AwardBadge(t.Context(), u.ID, 9999, "manual")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestCatalogLoadIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	f := setupTest(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	badges, err := f.service.Badge().ActiveBadges(ctx)
	require.NoError(t, err)
	assert.Len(t, badges, 9)
}

func TestTopUnearnedProgress(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	u := f.user(t, "alice")
	f.question(t, u)
	f.question(t, u)

	top, err := f.service.Badge().GetTopUnearnedProgress(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "Curious", top[0].Name)
	assert.Equal(t, 2, top[0].Current)
	assert.Equal(t, 5, top[0].Target)
	assert.InDelta(t, 0.4, top[0].Ratio(), 1e-9)

	// Ties are broken by catalog order.
	assert.Equal(t, "Student", top[1].Name)

	_, err = f.service.Badge().AwardBadge(ctx, u.ID, f.badgeID(t, "Student"), "manual")
	require.NoError(t, err)

	top, err = f.service.Badge().GetTopUnearnedProgress(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	for _, p := range top {
		assert.NotEqual(t, "Student", p.Name)
		assert.False(t, p.Earned)
	}

	_, err = f.service.Badge().GetTopUnearnedProgress(ctx, 9999, 3)
	require.ErrorIs(t, err, types.ErrUserNotFound)
}

func TestEditingAwardsEditorBadge(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	u := f.user(t, "alice")
	q := f.question(t, u)

	require.NoError(t, f.service.Content().EditQuestion(ctx, u.ID, q.ID, "How do votes work?", "Edited body."))

	progress, err := f.service.Badge().UpdateProgress(ctx, u.ID, f.badgeID(t, "Editor"))
	require.NoError(t, err)
	assert.True(t, progress.Earned)
	assert.Equal(t, 1, progress.Current)

	assert.Equal(t, 5, f.reputation(t, u))
	assert.Len(t, f.recorder.ofType(u.ID, enum.NotificationTypeBadgeAwarded), 1)
	assert.NotEmpty(t, f.recorder.events(realtime.EventBadgeProgressUpdated))
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	asker := f.user(t, "asker")
	voter := f.user(t, "voter")
	q := f.question(t, asker)

	// The vote awards Student to the asker as a side effect.
	_, err := f.service.Vote().CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.NoError(t, err)
	assert.Equal(t, 20, f.reputation(t, asker))

	for range 2 {
		progress, err := f.service.Badge().RecalculateAll(ctx, asker.ID)
		require.NoError(t, err)
		assert.Len(t, progress, 9)
	}

	assert.Equal(t, 20, f.reputation(t, asker))
	assert.Len(t, f.recorder.ofType(asker.ID, enum.NotificationTypeBadgeAwarded), 1)
}
