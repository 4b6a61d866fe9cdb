package types

import "time"

// User is a community member. Reputation is a cache of the newest
// ReputationHistory.NewTotal for the user.
type User struct {
	ID         int64     `bun:",pk,autoincrement" json:"id"`
	Name       string    `bun:",notnull" json:"name"`
	Reputation int       `bun:",notnull" json:"reputation"`
	IsAdmin    bool      `bun:",notnull" json:"isAdmin"`
	CreatedAt  time.Time `bun:",notnull" json:"createdAt"`
}
