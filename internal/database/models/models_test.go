package models_test

import (
	"testing"

	"github.com/agorahq/agora/internal/database/dbtest"
	"github.com/agorahq/agora/internal/database/models"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

type fixture struct {
	db         *bun.DB
	users      *models.UserModel
	questions  *models.QuestionModel
	answers    *models.AnswerModel
	votes      *models.VoteModel
	reputation *models.ReputationModel
	badges     *models.BadgeModel
	notifs     *models.NotificationModel
}

func setupTest(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	logger := zap.NewNop()
	users := models.NewUser(db, logger)

	return &fixture{
		db:         db,
		users:      users,
		questions:  models.NewQuestion(db, logger),
		answers:    models.NewAnswer(db, logger),
		votes:      models.NewVote(db, logger),
		reputation: models.NewReputation(db, users, logger),
		badges:     models.NewBadge(db, logger),
		notifs:     models.NewNotification(db, logger),
	}
}

func (f *fixture) user(t *testing.T, name string) *types.User {
	t.Helper()

	u := &types.User{Name: name}
	require.NoError(t, f.users.CreateUser(t.Context(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestCreditFloorsAtZero(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	u := f.user(t, "alice")

	entry, err := f.reputation.Credit(ctx, f.db, u.ID, 10, enum.ReputationReasonQuestionUpvoted, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.OldTotal)
	assert.Equal(t, 10, entry.NewTotal)

	entry, err = f.reputation.Credit(ctx, f.db, u.ID, -12, enum.ReputationReasonQuestionDownvoted, 1)
	require.NoError(t, err)
	assert.Equal(t, -12, entry.Amount)
	assert.Equal(t, 10, entry.OldTotal)
	assert.Equal(t, 0, entry.NewTotal)

	got, err := f.users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Reputation)

	history, err := f.reputation.GetHistory(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, -12, history[0].Amount)
}

func TestCreditUnknownUser(t *testing.T) {
	t.Parallel()

	f := setupTest(t)

	_, err := f.reputation.Credit(t.Context(), f.db, 999, 10, enum.ReputationReasonFavorited, 1)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestVoteRowLifecycle(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	owner := f.user(t, "owner")
	voter := f.user(t, "voter")

	q := &types.Question{OwnerID: owner.ID, Title: "t", Body: "b"}
	require.NoError(t, f.questions.CreateQuestion(ctx, q))

	target, err := f.votes.GetTarget(ctx, f.db, enum.TargetKindQuestion, q.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, target.OwnerID)

	dir, err := f.votes.GetDirection(ctx, f.db, voter.ID, q.ID, enum.TargetKindQuestion)
	require.NoError(t, err)
	assert.Equal(t, enum.VoteDirectionNone, dir)

	require.NoError(t, f.votes.SaveVote(ctx, f.db, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteDirectionUp))
	require.NoError(t, f.votes.SaveVote(ctx, f.db, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteDirectionDown))

	count, err := f.badges.CountForCriteria(ctx, voter.ID, enum.BadgeCriteriaVotesCast)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	dir, err = f.votes.GetDirection(ctx, f.db, voter.ID, q.ID, enum.TargetKindQuestion)
	require.NoError(t, err)
	assert.Equal(t, enum.VoteDirectionDown, dir)

	require.NoError(t, f.votes.SaveVote(ctx, f.db, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteDirectionNone))

	count, err = f.badges.CountForCriteria(ctx, voter.ID, enum.BadgeCriteriaVotesCast)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdjustScoreAllowsNegative(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	owner := f.user(t, "owner")

	q := &types.Question{OwnerID: owner.ID, Title: "t", Body: "b"}
	require.NoError(t, f.questions.CreateQuestion(ctx, q))

	a := &types.Answer{QuestionID: q.ID, OwnerID: owner.ID, Body: "a"}
	require.NoError(t, f.answers.CreateAnswer(ctx, a))

	score, err := f.votes.AdjustScore(ctx, f.db, enum.TargetKindAnswer, a.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, score)

	score, err = f.votes.AdjustScore(ctx, f.db, enum.TargetKindAnswer, a.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	_, err = f.votes.GetTarget(ctx, f.db, enum.TargetKindAnswer, a.ID+100)
	require.ErrorIs(t, err, types.ErrAnswerNotFound)
}

func TestSeededCatalogAndCounters(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	owner := f.user(t, "owner")

	badges, err := f.badges.GetActiveBadges(ctx)
	require.NoError(t, err)
	assert.Len(t, badges, 9)

	for range 2 {
		require.NoError(t, f.questions.CreateQuestion(ctx, &types.Question{OwnerID: owner.ID, Title: "t", Body: "b"}))
	}

	asked, err := f.badges.CountForCriteria(ctx, owner.ID, enum.BadgeCriteriaQuestionsAsked)
	require.NoError(t, err)
	assert.Equal(t, 2, asked)

	positive, err := f.badges.CountForCriteria(ctx, owner.ID, enum.BadgeCriteriaQuestionsWithPositiveScore)
	require.NoError(t, err)
	assert.Zero(t, positive)
}

func TestAssignBadgeOnce(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	u := f.user(t, "alice")

	badges, err := f.badges.GetActiveBadges(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, badges)

	assignment := &types.BadgeAssignment{UserID: u.ID, BadgeID: badges[0].ID, Reason: "test"}

	created, err := f.badges.AssignBadge(ctx, f.db, assignment)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.badges.AssignBadge(ctx, f.db, assignment)
	require.NoError(t, err)
	assert.False(t, created)

	earned, err := f.badges.GetEarnedBadgeIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Contains(t, earned, badges[0].ID)
}

func TestNotificationReadState(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	u := f.user(t, "alice")

	batch := []*types.Notification{
		{RecipientID: u.ID, Title: "one", Type: enum.NotificationTypeNewAnswer},
		{RecipientID: u.ID, Title: "two", Type: enum.NotificationTypeReputationChanged},
	}
	require.NoError(t, f.notifs.InsertNotifications(ctx, batch))

	unread, err := f.notifs.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	latest, err := f.notifs.GetLatestOfType(ctx, u.ID, enum.NotificationTypeReputationChanged)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "two", latest.Title)

	none, err := f.notifs.GetLatestOfType(ctx, u.ID, enum.NotificationTypeBadgeAwarded)
	require.NoError(t, err)
	assert.Nil(t, none)

	changed, err := f.notifs.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	list, err := f.notifs.GetNotifications(ctx, u.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFindScoreDrift(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	owner := f.user(t, "owner")
	voter := f.user(t, "voter")

	q := &types.Question{OwnerID: owner.ID, Title: "t", Body: "b"}
	require.NoError(t, f.questions.CreateQuestion(ctx, q))

	require.NoError(t, f.votes.SaveVote(ctx, f.db, voter.ID, q.ID, enum.TargetKindQuestion, enum.VoteDirectionUp))
	_, err := f.votes.AdjustScore(ctx, f.db, enum.TargetKindQuestion, q.ID, 1)
	require.NoError(t, err)

	drifts, err := f.votes.FindScoreDrift(ctx, enum.TargetKindQuestion)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	_, err = f.votes.AdjustScore(ctx, f.db, enum.TargetKindQuestion, q.ID, 4)
	require.NoError(t, err)

	drifts, err = f.votes.FindScoreDrift(ctx, enum.TargetKindQuestion)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, types.ScoreDrift{ID: q.ID, Score: 5, Tally: 1}, drifts[0])

	_, err = f.votes.FindScoreDrift(ctx, enum.TargetKind(9))
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
