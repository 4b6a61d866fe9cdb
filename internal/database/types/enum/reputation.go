package enum

import "fmt"

// ReputationReason is the reason code stored with every reputation ledger entry.
type ReputationReason int

const (
	ReputationReasonQuestionUpvoted ReputationReason = iota
	ReputationReasonQuestionDownvoted
	ReputationReasonAnswerUpvoted
	ReputationReasonAnswerDownvoted
	ReputationReasonAnswerAccepted
	ReputationReasonAcceptedAnswer
	ReputationReasonFavorited
	ReputationReasonBountyAwarded
	ReputationReasonBountyRemoved
	ReputationReasonAdminAdjustment
	// ReputationReasonVoteRemoved reverses an earlier vote credit.
	ReputationReasonVoteRemoved
	// ReputationReasonBadgeAwarded carries a badge's reputation bonus.
	ReputationReasonBadgeAwarded
)

// String returns the snake_case name of the reason.
func (r ReputationReason) String() string {
	switch r {
	case ReputationReasonQuestionUpvoted:
		return "question_upvoted"
	case ReputationReasonQuestionDownvoted:
		return "question_downvoted"
	case ReputationReasonAnswerUpvoted:
		return "answer_upvoted"
	case ReputationReasonAnswerDownvoted:
		return "answer_downvoted"
	case ReputationReasonAnswerAccepted:
		return "answer_accepted"
	case ReputationReasonAcceptedAnswer:
		return "accepted_answer"
	case ReputationReasonFavorited:
		return "favorited"
	case ReputationReasonBountyAwarded:
		return "bounty_awarded"
	case ReputationReasonBountyRemoved:
		return "bounty_removed"
	case ReputationReasonAdminAdjustment:
		return "admin_adjustment"
	case ReputationReasonVoteRemoved:
		return "vote_removed"
	case ReputationReasonBadgeAwarded:
		return "badge_awarded"
	}
	return fmt.Sprintf("ReputationReason(%d)", int(r))
}
