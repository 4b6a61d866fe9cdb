package service_test

import (
	"fmt"
	"testing"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVoteScenario(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()
	votes := f.service.Vote()

	asker := f.user(t, "asker")
	voter := f.user(t, "voter")
	q := f.question(t, asker)

	res, err := votes.CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.NewScore)
	assert.Equal(t, enum.VoteDirectionUp, res.Current)
	assert.Equal(t, 10, f.reputation(t, asker))
	assert.Len(t, f.recorder.ofType(asker.ID, enum.NotificationTypeVoteReceived), 1)

	res, err = votes.CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestDown)
	require.NoError(t, err)
	assert.Equal(t, -1, res.NewScore)
	assert.Equal(t, -2, res.ScoreDelta)
	assert.Equal(t, -12, res.ReputationDelta)
	assert.Equal(t, 0, f.reputation(t, asker))

	res, err = votes.CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestRemove)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewScore)
	assert.Equal(t, enum.VoteDirectionNone, res.Current)
	assert.Equal(t, 2, f.reputation(t, asker))

	entries := f.history(t, asker)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, 2, entries[0].Amount)
	assert.Equal(t, enum.ReputationReasonVoteRemoved, entries[0].Reason)
	assert.Equal(t, 0, entries[0].OldTotal)
	assert.Equal(t, 2, entries[0].NewTotal)

	assert.Equal(t, -12, entries[1].Amount)
	assert.Equal(t, enum.ReputationReasonQuestionDownvoted, entries[1].Reason)
	assert.Equal(t, 10, entries[1].OldTotal)
	assert.Equal(t, 0, entries[1].NewTotal)

	assert.Equal(t, 10, entries[2].Amount)
	assert.Equal(t, 0, entries[2].OldTotal)
	assert.Equal(t, 10, entries[2].NewTotal)

	stored, err := f.repo.Question().GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Score)

	assert.Len(t, f.recorder.ofType(asker.ID, enum.NotificationTypeVoteReceived), 2)
	assert.Len(t, f.recorder.events(realtime.EventQuestionUpdated), 3)
}

func TestCastVoteIsIdempotent(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()

	asker := f.user(t, "asker")
	voter := f.user(t, "voter")
	q := f.question(t, asker)

	_, err := f.service.Vote().CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.NoError(t, err)

	res, err := f.service.Vote().CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, 1, res.NewScore)
	assert.Equal(t, enum.VoteDirectionUp, res.Current)

	assert.Len(t, f.history(t, asker), 1)
	assert.Equal(t, 10, f.reputation(t, asker))
	assert.Len(t, f.recorder.ofType(asker.ID, enum.NotificationTypeVoteReceived), 1)

	// Removing a vote that does not exist changes nothing.
	other := f.user(t, "other")
	res, err = f.service.Vote().CastVote(ctx, other.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestRemove)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, 1, res.NewScore)
}

func TestAnswerVoteToggleRestoresState(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()

	asker := f.user(t, "asker")
	answerer := f.user(t, "answerer")
	voter := f.user(t, "voter")
	q := f.question(t, asker)
	a := f.answer(t, answerer, q)

	for _, req := range []enum.VoteRequest{enum.VoteRequestUp, enum.VoteRequestDown} {
		_, err := f.service.Vote().CastVote(ctx, voter.ID, a.ID, enum.TargetKindAnswer, req)
		require.NoError(t, err)

		res, err := f.service.Vote().CastVote(ctx, voter.ID, a.ID, enum.TargetKindAnswer, enum.VoteRequestRemove)
		require.NoError(t, err)
		assert.Equal(t, 0, res.NewScore, req.String())
	}

	// +10 -10, then -2 floored at 0 and +2 back.
	assert.Equal(t, 2, f.reputation(t, answerer))

	direction, err := f.repo.Vote().GetDirection(ctx, f.db, voter.ID, a.ID, enum.TargetKindAnswer)
	require.NoError(t, err)
	assert.Equal(t, enum.VoteDirectionNone, direction)

	// Answer votes are not pushed to question viewers.
	assert.Empty(t, f.recorder.events(realtime.EventQuestionUpdated))
}

func TestSelfVoteChangesScoreOnly(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()

	asker := f.user(t, "asker")
	q := f.question(t, asker)

	res, err := f.service.Vote().CastVote(ctx, asker.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.NewScore)
	assert.Zero(t, res.ReputationDelta)

	assert.Empty(t, f.history(t, asker))
	assert.Zero(t, f.reputation(t, asker))
	assert.Empty(t, f.recorder.ofType(asker.ID, enum.NotificationTypeVoteReceived))
	assert.Empty(t, f.recorder.ofType(asker.ID, enum.NotificationTypeReputationChanged))
}

func TestCastVoteRejectsBadInput(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	voter := f.user(t, "voter")
	q := f.question(t, voter)

	_, err := f.service.Vote().CastVote(ctx, 0, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = f.service.Vote().CastVote(ctx, voter.ID, q.ID, enum.TargetKind(7), enum.VoteRequestUp)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = f.service.Vote().CastVote(ctx, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteRequest(9))
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = f.service.Vote().CastVote(ctx, voter.ID, 9999, enum.TargetKindAnswer, enum.VoteRequestUp)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestCastVoteRejectsUnknownVoter(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()
	asker := f.user(t, "asker")
	q := f.question(t, asker)

	_, err := f.service.Vote().CastVote(ctx, 4242, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	dir, err := f.repo.Vote().GetDirection(ctx, f.db, 4242, q.ID, enum.TargetKindQuestion)
	require.NoError(t, err)
	assert.Equal(t, enum.VoteDirectionNone, dir)

	stored, err := f.repo.Question().GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Score)
	assert.Zero(t, f.reputation(t, asker))
}

func TestConcurrentVotesDoNotLoseUpdates(t *testing.T) {
	t.Parallel()

	const voters = 8

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()
	asker := f.user(t, "asker")
	q := f.question(t, asker)

	ids := make([]int64, voters)
	for i := range ids {
		ids[i] = f.user(t, fmt.Sprintf("voter-%d", i)).ID
	}

	p := pool.New().WithErrors()
	for _, id := range ids {
		p.Go(func() error {
			_, err := f.service.Vote().CastVote(ctx, id, q.ID, enum.TargetKindQuestion, enum.VoteRequestUp)
			return err
		})
	}
	require.NoError(t, p.Wait())

	stored, err := f.repo.Question().GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, stored.Score)
	assert.Equal(t, 10*voters, f.reputation(t, asker))

	entries := f.history(t, asker)
	require.Len(t, entries, voters)
	assert.Equal(t, 10*voters, entries[0].NewTotal)

	drifts, err := f.repo.Vote().FindScoreDrift(ctx, enum.TargetKindQuestion)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestAcceptAnswer(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	votes := f.service.Vote()

	asker := f.user(t, "asker")
	answerer := f.user(t, "answerer")
	q := f.question(t, asker)
	a := f.answer(t, answerer, q)
	other := f.answer(t, f.user(t, "late"), q)

	_, err := votes.AcceptAnswer(ctx, answerer.ID, q.ID, a.ID)
	require.ErrorIs(t, err, types.ErrForbidden)

	unrelated := f.question(t, answerer)
	_, err = votes.AcceptAnswer(ctx, unrelated.OwnerID, unrelated.ID, a.ID)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	accepted, err := votes.AcceptAnswer(ctx, asker.ID, q.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, accepted)

	storedQ, err := f.repo.Question().GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, storedQ.IsResolved)
	assert.Equal(t, a.ID, storedQ.AcceptedAnswerID)

	storedA, err := f.repo.Answer().GetAnswerByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, storedA.IsAccepted)

	// +15 for the accepted answer and +15 for the Scholar badge.
	assert.Equal(t, 30, f.reputation(t, answerer))
	assert.Equal(t, 2, f.reputation(t, asker))

	assert.Len(t, f.recorder.ofType(answerer.ID, enum.NotificationTypeAnswerAccepted), 1)
	assert.Len(t, f.recorder.ofType(answerer.ID, enum.NotificationTypeBadgeAwarded), 1)
	assert.NotEmpty(t, f.recorder.events(realtime.EventQuestionUpdated))

	accepted, err = votes.AcceptAnswer(ctx, asker.ID, q.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 30, f.reputation(t, answerer))

	_, err = votes.AcceptAnswer(ctx, asker.ID, q.ID, other.ID)
	require.ErrorIs(t, err, types.ErrConflict)
}

func TestAcceptOwnAnswerCreditsNothing(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()

	asker := f.user(t, "asker")
	q := f.question(t, asker)
	a := f.answer(t, asker, q)

	accepted, err := f.service.Vote().AcceptAnswer(ctx, asker.ID, q.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, accepted)

	assert.Empty(t, f.history(t, asker))
	assert.Empty(t, f.recorder.ofType(asker.ID, enum.NotificationTypeAnswerAccepted))
}
