// Package realtime delivers ephemeral events to live subscribers over
// server-sent events, optionally fanned out across processes through redis.
package realtime

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Event names pushed to subscribers.
const (
	EventNewAnswer            = "new-answer"
	EventNewComment           = "new-comment"
	EventNewReply             = "new-reply"
	EventVoteReceived         = "vote-received"
	EventAnswerAccepted       = "answer-accepted"
	EventBadgeProgressUpdated = "badge-progress-updated"
	EventBadgeAwarded         = "badge-awarded"
	EventReputationChanged    = "reputation-changed"
	EventQuestionUpdated      = "question-updated"
)

// Message is a single event addressed to one channel.
type Message struct {
	ID      uuid.UUID `json:"id"`
	Channel string    `json:"channel"`
	Event   string    `json:"event"`
	Data    any       `json:"data,omitempty"`
}

// NewMessage creates a message with a fresh ID.
func NewMessage(channel, event string, data any) *Message {
	return &Message{
		ID:      uuid.New(),
		Channel: channel,
		Event:   event,
		Data:    data,
	}
}

// Publisher delivers messages to subscribers of their channel.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// UserChannel is the direct channel of a user.
func UserChannel(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// QuestionChannel is the group of viewers of a question.
func QuestionChannel(questionID int64) string {
	return "question:" + strconv.FormatInt(questionID, 10)
}

// BadgeChannel carries a user's badge progress updates.
func BadgeChannel(userID int64) string {
	return "badges:" + strconv.FormatInt(userID, 10)
}
