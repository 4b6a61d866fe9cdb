package notification

import (
	"fmt"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/realtime"
)

// QuestionURL is the canonical link to a question.
func QuestionURL(questionID int64) string {
	return fmt.Sprintf("/questions/%d", questionID)
}

// AnswerURL links to an answer within its question.
func AnswerURL(questionID, answerID int64) string {
	return fmt.Sprintf("/questions/%d#answer-%d", questionID, answerID)
}

// NewAnswer notifies the question owner of a new answer. It returns nil
// when the owner answered their own question.
func NewAnswer(question *types.Question, answer *types.Answer) *types.Notification {
	if question.OwnerID == answer.OwnerID {
		return nil
	}

	return &types.Notification{
		RecipientID: question.OwnerID,
		Title:       "New answer",
		Message:     fmt.Sprintf("Your question %q received a new answer", question.Title),
		URL:         AnswerURL(question.ID, answer.ID),
		Type:        enum.NotificationTypeNewAnswer,
		RelatedID:   answer.ID,
	}
}

// NewComment notifies the owner of the commented post. It returns nil for
// self comments.
func NewComment(targetOwnerID int64, comment *types.Comment, url string) *types.Notification {
	if targetOwnerID == comment.OwnerID {
		return nil
	}

	return &types.Notification{
		RecipientID: targetOwnerID,
		Title:       "New comment",
		Message:     fmt.Sprintf("Someone commented on your %s", comment.TargetKind),
		URL:         url,
		Type:        enum.NotificationTypeNewComment,
		RelatedID:   comment.ID,
	}
}

// NewReply notifies the author of the parent comment. It returns nil for
// replies to oneself.
func NewReply(parent, reply *types.Comment, url string) *types.Notification {
	if parent.OwnerID == reply.OwnerID {
		return nil
	}

	return &types.Notification{
		RecipientID: parent.OwnerID,
		Title:       "New reply",
		Message:     "Someone replied to your comment",
		URL:         url,
		Type:        enum.NotificationTypeNewReply,
		RelatedID:   reply.ID,
	}
}

// VoteReceived notifies the owner of voted content. It returns nil for
// self votes and removals.
func VoteReceived(target *types.Votable, voterID int64, direction enum.VoteDirection) *types.Notification {
	if target.OwnerID == voterID || direction == enum.VoteDirectionNone {
		return nil
	}

	url := QuestionURL(target.QuestionID)
	if target.Kind == enum.TargetKindAnswer {
		url = AnswerURL(target.QuestionID, target.ID)
	}

	return &types.Notification{
		RecipientID: target.OwnerID,
		Title:       "Vote received",
		Message:     fmt.Sprintf("Your %s received a %svote", target.Kind, direction),
		URL:         url,
		Type:        enum.NotificationTypeVoteReceived,
		RelatedID:   target.ID,
	}
}

// AnswerAccepted notifies the answer author. It returns nil when the
// question owner accepted their own answer.
func AnswerAccepted(question *types.Question, answer *types.Answer) *types.Notification {
	if question.OwnerID == answer.OwnerID {
		return nil
	}

	return &types.Notification{
		RecipientID: answer.OwnerID,
		Title:       "Answer accepted",
		Message:     fmt.Sprintf("Your answer to %q was accepted", question.Title),
		URL:         AnswerURL(question.ID, answer.ID),
		Type:        enum.NotificationTypeAnswerAccepted,
		RelatedID:   answer.ID,
	}
}

// ReputationChanged reports a ledger entry to its user.
func ReputationChanged(entry *types.ReputationHistory) *types.Notification {
	return &types.Notification{
		RecipientID: entry.UserID,
		Title:       "Reputation changed",
		Message: fmt.Sprintf("Your reputation changed by %+d (%s) and is now %d",
			entry.Amount, entry.Reason, entry.NewTotal),
		URL:       fmt.Sprintf("/users/%d/reputation", entry.UserID),
		Type:      enum.NotificationTypeReputationChanged,
		RelatedID: entry.RelatedID,
	}
}

// BadgeAwarded congratulates a user on a new badge.
func BadgeAwarded(userID int64, badge *types.Badge) *types.Notification {
	return &types.Notification{
		RecipientID: userID,
		Title:       "Badge earned",
		Message:     fmt.Sprintf("You earned the %s badge: %s", badge.Name, badge.Description),
		URL:         "/badges",
		Type:        enum.NotificationTypeBadgeAwarded,
		RelatedID:   badge.ID,
	}
}

// BadgeProgress is the ephemeral progress update for a user's badge channel.
func BadgeProgress(userID int64, progress []*types.BadgeProgress) *realtime.Message {
	return realtime.NewMessage(realtime.BadgeChannel(userID), realtime.EventBadgeProgressUpdated, progress)
}

// QuestionUpdate is the payload of a question-updated event.
type QuestionUpdate struct {
	QuestionID       int64 `json:"questionId"`
	Score            int   `json:"score"`
	IsResolved       bool  `json:"isResolved"`
	AcceptedAnswerID int64 `json:"acceptedAnswerId,omitempty"`
}

// QuestionUpdated is the ephemeral event for viewers of a question.
func QuestionUpdated(update QuestionUpdate) *realtime.Message {
	return realtime.NewMessage(realtime.QuestionChannel(update.QuestionID), realtime.EventQuestionUpdated, update)
}
