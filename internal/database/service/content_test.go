package service_test

import (
	"strings"
	"testing"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAnswerNotifiesOwner(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	asker := f.user(t, "asker")
	answerer := f.user(t, "answerer")
	q := f.question(t, asker)

	a := f.answer(t, answerer, q)
	assert.Equal(t, q.ID, a.QuestionID)

	notes := f.recorder.ofType(asker.ID, enum.NotificationTypeNewAnswer)
	require.Len(t, notes, 1)
	assert.Equal(t, a.ID, notes[0].RelatedID)

	// A self answer is only pushed to the question's viewers.
	f.answer(t, asker, q)
	assert.Len(t, f.recorder.ofType(asker.ID, enum.NotificationTypeNewAnswer), 1)
	assert.Len(t, f.recorder.events(realtime.EventNewAnswer), 1)

	_, err := f.service.Content().PostAnswer(ctx, answerer.ID, 9999, "body")
	require.ErrorIs(t, err, types.ErrQuestionNotFound)
}

func TestPostCommentAndReply(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	content := f.service.Content()

	asker := f.user(t, "asker")
	answerer := f.user(t, "answerer")
	commenter := f.user(t, "commenter")
	q := f.question(t, asker)
	a := f.answer(t, answerer, q)

	comment, err := content.PostComment(ctx, commenter.ID, enum.TargetKindAnswer, a.ID, 0, "Nice answer")
	require.NoError(t, err)
	assert.Len(t, f.recorder.ofType(answerer.ID, enum.NotificationTypeNewComment), 1)

	_, err = content.PostComment(ctx, answerer.ID, enum.TargetKindAnswer, a.ID, comment.ID, "Thanks")
	require.NoError(t, err)
	replies := f.recorder.ofType(commenter.ID, enum.NotificationTypeNewReply)
	require.Len(t, replies, 1)
	assert.Equal(t, "/questions/1#answer-1", replies[0].URL)

	_, err = content.PostComment(ctx, answerer.ID, enum.TargetKindQuestion, q.ID, comment.ID, "Wrong place")
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = content.PostComment(ctx, answerer.ID, enum.TargetKindQuestion, q.ID, 0, "   ")
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = content.PostComment(ctx, answerer.ID, enum.TargetKindAnswer, 9999, 0, "Missing")
	require.ErrorIs(t, err, types.ErrAnswerNotFound)
}

func TestEditRequiresOwner(t *testing.T) {
	t.Parallel()

	f := setupTest(t)
	ctx := t.Context()
	content := f.service.Content()

	asker := f.user(t, "asker")
	answerer := f.user(t, "answerer")
	q := f.question(t, asker)
	a := f.answer(t, answerer, q)

	require.ErrorIs(t, content.EditQuestion(ctx, answerer.ID, q.ID, "Title", "Body"), types.ErrForbidden)
	require.ErrorIs(t, content.EditAnswer(ctx, asker.ID, a.ID, "Body"), types.ErrForbidden)
	require.ErrorIs(t, content.EditAnswer(ctx, answerer.ID, a.ID, strings.Repeat("x", 30001)), types.ErrInvalidArgument)

	require.NoError(t, content.EditAnswer(ctx, answerer.ID, a.ID, "Better body"))

	stored, err := f.repo.Answer().GetAnswerByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better body", stored.Body)
	assert.Equal(t, 1, stored.EditCount)
}

func TestFavoriteQuestion(t *testing.T) {
	t.Parallel()

	f := setupTest(t).withoutBadges(t)
	ctx := t.Context()
	content := f.service.Content()

	asker := f.user(t, "asker")
	fan := f.user(t, "fan")
	q := f.question(t, asker)

	created, err := content.FavoriteQuestion(ctx, fan.ID, q.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = content.FavoriteQuestion(ctx, fan.ID, q.ID)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = content.FavoriteQuestion(ctx, asker.ID, q.ID)
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, 5, f.reputation(t, asker))
	entries := f.history(t, asker)
	require.Len(t, entries, 1)
	assert.Equal(t, enum.ReputationReasonFavorited, entries[0].Reason)
}
