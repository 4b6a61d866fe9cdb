package notification_test

import (
	"testing"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/notification"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildersExcludeSelf(t *testing.T) {
	t.Parallel()

	q := &types.Question{ID: 1, OwnerID: 10, Title: "How?"}
	own := &types.Answer{ID: 2, QuestionID: 1, OwnerID: 10}
	other := &types.Answer{ID: 3, QuestionID: 1, OwnerID: 11}

	assert.Nil(t, notification.NewAnswer(q, own))
	assert.Nil(t, notification.AnswerAccepted(q, own))

	n := notification.NewAnswer(q, other)
	require.NotNil(t, n)
	assert.Equal(t, int64(10), n.RecipientID)
	assert.Equal(t, "/questions/1#answer-3", n.URL)

	n = notification.AnswerAccepted(q, other)
	require.NotNil(t, n)
	assert.Equal(t, int64(11), n.RecipientID)

	parent := &types.Comment{ID: 5, OwnerID: 20}
	assert.Nil(t, notification.NewReply(parent, &types.Comment{ID: 6, OwnerID: 20}, "/q"))
	assert.NotNil(t, notification.NewReply(parent, &types.Comment{ID: 6, OwnerID: 21}, "/q"))
	assert.Nil(t, notification.NewComment(20, &types.Comment{OwnerID: 20}, "/q"))
}

func TestVoteReceived(t *testing.T) {
	t.Parallel()

	target := &types.Votable{Kind: enum.TargetKindAnswer, ID: 4, OwnerID: 1, QuestionID: 9}

	assert.Nil(t, notification.VoteReceived(target, 1, enum.VoteDirectionUp))
	assert.Nil(t, notification.VoteReceived(target, 2, enum.VoteDirectionNone))

	n := notification.VoteReceived(target, 2, enum.VoteDirectionDown)
	require.NotNil(t, n)
	assert.Equal(t, enum.NotificationTypeVoteReceived, n.Type)
	assert.Equal(t, "/questions/9#answer-4", n.URL)
	assert.Equal(t, "Your answer received a downvote", n.Message)
}

func TestEphemeralMessages(t *testing.T) {
	t.Parallel()

	msg := notification.QuestionUpdated(notification.QuestionUpdate{QuestionID: 3, IsResolved: true})
	assert.Equal(t, realtime.QuestionChannel(3), msg.Channel)
	assert.Equal(t, realtime.EventQuestionUpdated, msg.Event)

	msg = notification.BadgeProgress(5, nil)
	assert.Equal(t, realtime.BadgeChannel(5), msg.Channel)
	assert.Equal(t, realtime.EventBadgeProgressUpdated, msg.Event)
}
