// Package vote holds the vote state machine. It is free of storage
// concerns: callers load the current direction, ask Decide what to do and
// then persist the outcome.
package vote

import (
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
)

// Outcome is the result of applying a vote request to the current state.
type Outcome struct {
	Applied    bool
	ScoreDelta int
	Previous   enum.VoteDirection
	Current    enum.VoteDirection
}

// Decide computes the transition for a requested vote given the voter's
// current direction on the target.
func Decide(current enum.VoteDirection, requested enum.VoteRequest) Outcome {
	var next enum.VoteDirection

	switch requested {
	case enum.VoteRequestUp:
		next = enum.VoteDirectionUp
	case enum.VoteRequestDown:
		next = enum.VoteDirectionDown
	case enum.VoteRequestRemove:
		next = enum.VoteDirectionNone
	default:
		return Outcome{Previous: current, Current: current}
	}

	if next == current {
		return Outcome{Previous: current, Current: current}
	}

	return Outcome{
		Applied:    true,
		ScoreDelta: int(next) - int(current),
		Previous:   current,
		Current:    next,
	}
}

// Credit is a reputation change owed to the owner of voted content.
type Credit struct {
	Amount int
	Reason enum.ReputationReason
}

// ReputationCredit derives the owner's reputation change for an outcome.
// The previous vote's credit is reversed and the new vote's credit applied
// in a single entry, so a flip from up to down on a question yields -12.
func ReputationCredit(kind enum.TargetKind, o Outcome) (Credit, bool) {
	if !o.Applied {
		return Credit{}, false
	}

	amount := -actionFor(kind, o.Previous).Amount + actionFor(kind, o.Current).Amount
	if amount == 0 {
		return Credit{}, false
	}

	reason := enum.ReputationReasonVoteRemoved
	if o.Current != enum.VoteDirectionNone {
		reason = actionFor(kind, o.Current).Reason
	}

	return Credit{Amount: amount, Reason: reason}, true
}

// actionFor returns the reputation action a standing vote is worth.
// VoteDirectionNone is worth nothing.
func actionFor(kind enum.TargetKind, d enum.VoteDirection) types.ReputationAction {
	switch kind {
	case enum.TargetKindQuestion:
		switch d {
		case enum.VoteDirectionUp:
			return types.ActionQuestionUpvoted
		case enum.VoteDirectionDown:
			return types.ActionQuestionDownvoted
		case enum.VoteDirectionNone:
		}
	case enum.TargetKindAnswer:
		switch d {
		case enum.VoteDirectionUp:
			return types.ActionAnswerUpvoted
		case enum.VoteDirectionDown:
			return types.ActionAnswerDownvoted
		case enum.VoteDirectionNone:
		}
	}
	return types.ReputationAction{}
}
