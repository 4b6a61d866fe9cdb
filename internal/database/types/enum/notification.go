package enum

import "fmt"

// NotificationType categorizes persisted notifications.
type NotificationType int

const (
	NotificationTypeNewAnswer NotificationType = iota
	NotificationTypeNewComment
	NotificationTypeNewReply
	NotificationTypeVoteReceived
	NotificationTypeAnswerAccepted
	NotificationTypeReputationChanged
	NotificationTypeBadgeAwarded
)

// String returns the kebab-case name used on the wire.
func (t NotificationType) String() string {
	switch t {
	case NotificationTypeNewAnswer:
		return "new-answer"
	case NotificationTypeNewComment:
		return "new-comment"
	case NotificationTypeNewReply:
		return "new-reply"
	case NotificationTypeVoteReceived:
		return "vote-received"
	case NotificationTypeAnswerAccepted:
		return "answer-accepted"
	case NotificationTypeReputationChanged:
		return "reputation-changed"
	case NotificationTypeBadgeAwarded:
		return "badge-awarded"
	}
	return fmt.Sprintf("NotificationType(%d)", int(t))
}
