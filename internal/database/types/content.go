package types

import (
	"time"

	"github.com/agorahq/agora/internal/database/types/enum"
)

// Question is a votable post that owns answers.
type Question struct {
	ID               int64     `bun:",pk,autoincrement" json:"id"`
	OwnerID          int64     `bun:",notnull" json:"ownerId"`
	Title            string    `bun:",notnull" json:"title"`
	Body             string    `bun:",notnull" json:"body"`
	Score            int       `bun:",notnull" json:"score"`
	IsResolved       bool      `bun:",notnull" json:"isResolved"`
	AcceptedAnswerID int64     `bun:",nullzero" json:"acceptedAnswerId,omitempty"`
	EditCount        int       `bun:",notnull" json:"editCount"`
	CreatedAt        time.Time `bun:",notnull" json:"createdAt"`
	UpdatedAt        time.Time `bun:",notnull" json:"updatedAt"`
}

// Answer is a votable reply to a question.
type Answer struct {
	ID         int64     `bun:",pk,autoincrement" json:"id"`
	QuestionID int64     `bun:",notnull" json:"questionId"`
	OwnerID    int64     `bun:",notnull" json:"ownerId"`
	Body       string    `bun:",notnull" json:"body"`
	Score      int       `bun:",notnull" json:"score"`
	IsAccepted bool      `bun:",notnull" json:"isAccepted"`
	EditCount  int       `bun:",notnull" json:"editCount"`
	CreatedAt  time.Time `bun:",notnull" json:"createdAt"`
	UpdatedAt  time.Time `bun:",notnull" json:"updatedAt"`
}

// Comment is attached to a question or answer. ParentID is set for replies.
type Comment struct {
	ID         int64           `bun:",pk,autoincrement" json:"id"`
	TargetKind enum.TargetKind `bun:",notnull" json:"targetKind"`
	TargetID   int64           `bun:",notnull" json:"targetId"`
	ParentID   int64           `bun:",nullzero" json:"parentId,omitempty"`
	OwnerID    int64           `bun:",notnull" json:"ownerId"`
	Body       string          `bun:",notnull" json:"body"`
	CreatedAt  time.Time       `bun:",notnull" json:"createdAt"`
}

// Favorite marks a question as favorited by a user.
type Favorite struct {
	UserID     int64     `bun:",pk" json:"userId"`
	QuestionID int64     `bun:",pk" json:"questionId"`
	CreatedAt  time.Time `bun:",notnull" json:"createdAt"`
}

// Votable is the score-bearing projection of a question or answer.
// QuestionID is the question itself for questions and the parent for answers.
type Votable struct {
	Kind       enum.TargetKind
	ID         int64
	OwnerID    int64
	QuestionID int64
	Score      int
}
