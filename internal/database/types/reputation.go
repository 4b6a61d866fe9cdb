package types

import (
	"time"

	"github.com/agorahq/agora/internal/database/types/enum"
)

// ReputationHistory is an immutable reputation ledger entry. Amount is the
// requested delta; NewTotal reflects the zero floor.
type ReputationHistory struct {
	ID        int64                 `bun:",pk,autoincrement" json:"id"`
	UserID    int64                 `bun:",notnull" json:"userId"`
	Amount    int                   `bun:",notnull" json:"amount"`
	OldTotal  int                   `bun:",notnull" json:"oldTotal"`
	NewTotal  int                   `bun:",notnull" json:"newTotal"`
	Reason    enum.ReputationReason `bun:",notnull" json:"reason"`
	RelatedID int64                 `bun:",notnull" json:"relatedId"`
	CreatedAt time.Time             `bun:",notnull" json:"createdAt"`
}

// ReputationAction is a community action with a fixed reputation amount.
type ReputationAction struct {
	Amount int
	Reason enum.ReputationReason
	Text   string
}

// Reputation amounts for community actions.
var (
	ActionQuestionUpvoted   = ReputationAction{Amount: 10, Reason: enum.ReputationReasonQuestionUpvoted, Text: "Question upvoted"}
	ActionQuestionDownvoted = ReputationAction{Amount: -2, Reason: enum.ReputationReasonQuestionDownvoted, Text: "Question downvoted"}
	ActionAnswerUpvoted     = ReputationAction{Amount: 10, Reason: enum.ReputationReasonAnswerUpvoted, Text: "Answer upvoted"}
	ActionAnswerDownvoted   = ReputationAction{Amount: -2, Reason: enum.ReputationReasonAnswerDownvoted, Text: "Answer downvoted"}
	ActionAnswerAccepted    = ReputationAction{Amount: 15, Reason: enum.ReputationReasonAnswerAccepted, Text: "Answer accepted"}
	ActionAcceptedAnswer    = ReputationAction{Amount: 2, Reason: enum.ReputationReasonAcceptedAnswer, Text: "Accepted an answer"}
	ActionFavorited         = ReputationAction{Amount: 5, Reason: enum.ReputationReasonFavorited, Text: "Question favorited"}
	ActionBountyAwarded     = ReputationAction{Amount: 50, Reason: enum.ReputationReasonBountyAwarded, Text: "Bounty awarded"}
	ActionBountyRemoved     = ReputationAction{Amount: -50, Reason: enum.ReputationReasonBountyRemoved, Text: "Bounty removed"}
	ActionAdminAdjustment   = ReputationAction{Amount: 0, Reason: enum.ReputationReasonAdminAdjustment, Text: "Admin adjustment"}
)

// ReputationActions lists every action keyed by its reason code.
var ReputationActions = map[enum.ReputationReason]ReputationAction{
	enum.ReputationReasonQuestionUpvoted:   ActionQuestionUpvoted,
	enum.ReputationReasonQuestionDownvoted: ActionQuestionDownvoted,
	enum.ReputationReasonAnswerUpvoted:     ActionAnswerUpvoted,
	enum.ReputationReasonAnswerDownvoted:   ActionAnswerDownvoted,
	enum.ReputationReasonAnswerAccepted:    ActionAnswerAccepted,
	enum.ReputationReasonAcceptedAnswer:    ActionAcceptedAnswer,
	enum.ReputationReasonFavorited:         ActionFavorited,
	enum.ReputationReasonBountyAwarded:     ActionBountyAwarded,
	enum.ReputationReasonBountyRemoved:     ActionBountyRemoved,
	enum.ReputationReasonAdminAdjustment:   ActionAdminAdjustment,
}
