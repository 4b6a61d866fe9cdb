package types

import (
	"time"

	"github.com/agorahq/agora/internal/database/types/enum"
)

// Notification is a persisted message for a single recipient. Only the
// recipient may toggle IsRead.
type Notification struct {
	ID          int64                 `bun:",pk,autoincrement" json:"id"`
	RecipientID int64                 `bun:",notnull" json:"recipientId"`
	Title       string                `bun:",notnull" json:"title"`
	Message     string                `bun:",notnull" json:"message"`
	URL         string                `bun:",notnull" json:"url"`
	IsRead      bool                  `bun:",notnull" json:"isRead"`
	Type        enum.NotificationType `bun:",notnull" json:"type"`
	RelatedID   int64                 `bun:",notnull" json:"relatedId"`
	CreatedAt   time.Time             `bun:",notnull" json:"createdAt"`
}
