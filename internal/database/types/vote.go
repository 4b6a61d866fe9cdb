package types

import (
	"time"

	"github.com/agorahq/agora/internal/database/types/enum"
)

// Vote is the single vote a voter holds on a target. At most one row
// exists per (VoterID, TargetID, TargetKind).
type Vote struct {
	VoterID    int64              `bun:",pk" json:"voterId"`
	TargetID   int64              `bun:",pk" json:"targetId"`
	TargetKind enum.TargetKind    `bun:",pk" json:"targetKind"`
	Direction  enum.VoteDirection `bun:",notnull" json:"direction"`
	VotedAt    time.Time          `bun:",notnull" json:"votedAt"`
}

// VoteResult describes what a vote-cast call did.
type VoteResult struct {
	Applied    bool
	ScoreDelta int
	Previous   enum.VoteDirection
	Current    enum.VoteDirection
	// NewScore is the target's cached score after the call.
	NewScore int
	// OwnerID is the owner of the voted content.
	OwnerID int64
	// ReputationDelta is the credit requested for the owner; zero for self votes.
	ReputationDelta int
}

// ScoreDrift is a target whose cached score disagrees with its stored votes.
type ScoreDrift struct {
	ID    int64 `bun:"id"`
	Score int   `bun:"score"`
	Tally int   `bun:"tally"`
}
