package types

import (
	"time"

	"github.com/agorahq/agora/internal/database/types/enum"
)

// Badge is a catalog entry describing an achievement.
type Badge struct {
	ID              int64              `bun:",pk,autoincrement" json:"id"`
	Name            string             `bun:",notnull,unique" json:"name"`
	Description     string             `bun:",notnull" json:"description"`
	Criteria        enum.BadgeCriteria `bun:",notnull" json:"criteria"`
	TargetCount     int                `bun:",notnull" json:"targetCount"`
	ReputationBonus int                `bun:",notnull" json:"reputationBonus"`
	IsActive        bool               `bun:",notnull" json:"isActive"`
}

// BadgeAssignment records that a user earned a badge. At most one exists
// per (UserID, BadgeID).
type BadgeAssignment struct {
	UserID    int64     `bun:",pk" json:"userId"`
	BadgeID   int64     `bun:",pk" json:"badgeId"`
	AwardedAt time.Time `bun:",notnull" json:"awardedAt"`
	Reason    string    `bun:",notnull" json:"reason"`
}

// BadgeProgress is computed on demand and never stored.
type BadgeProgress struct {
	BadgeID int64  `json:"badgeId"`
	Name    string `json:"name"`
	Current int    `json:"current"`
	Target  int    `json:"target"`
	Earned  bool   `json:"earned"`
}

// Ratio returns the completion ratio capped at 1.
func (p *BadgeProgress) Ratio() float64 {
	if p.Target <= 0 {
		return 1
	}
	r := float64(p.Current) / float64(p.Target)
	if r > 1 {
		return 1
	}
	return r
}

// Complete reports whether the counter has reached the target.
func (p *BadgeProgress) Complete() bool {
	return p.Current >= p.Target
}
