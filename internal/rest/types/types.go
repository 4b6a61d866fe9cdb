package types

import "time"

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SuccessResponse acknowledges a request without a payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// VoteRequest casts, changes or removes a vote.
type VoteRequest struct {
	ItemID   int64  `json:"itemId"`
	ItemType string `json:"itemType"`
	VoteType string `json:"voteType"`
}

// VoteResponse reports the target's score and the caller's standing vote.
type VoteResponse struct {
	Success  bool `json:"success"`
	NewScore int  `json:"newScore"`
	UserVote int  `json:"userVote"`
}

// AcceptAnswerRequest accepts an answer on behalf of the question owner.
type AcceptAnswerRequest struct {
	AnswerID   int64 `json:"answerId"`
	QuestionID int64 `json:"questionId"`
}

// AcceptAnswerResponse reports whether the acceptance changed anything.
type AcceptAnswerResponse struct {
	Success  bool `json:"success"`
	Accepted bool `json:"accepted"`
}

// QuestionRequest creates or edits a question.
type QuestionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// AnswerRequest creates or edits an answer.
type AnswerRequest struct {
	Body string `json:"body"`
}

// CommentRequest posts a comment or a reply.
type CommentRequest struct {
	TargetType string `json:"targetType"`
	TargetID   int64  `json:"targetId"`
	ParentID   int64  `json:"parentId,omitempty"`
	Body       string `json:"body"`
}

// Question is the public form of a question.
type Question struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"ownerId"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	Score            int       `json:"score"`
	IsResolved       bool      `json:"isResolved"`
	AcceptedAnswerID int64     `json:"acceptedAnswerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Answer is the public form of an answer.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"questionId"`
	OwnerID    int64     `json:"ownerId"`
	Body       string    `json:"body"`
	Score      int       `json:"score"`
	IsAccepted bool      `json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comment is the public form of a comment.
type Comment struct {
	ID         int64     `json:"id"`
	TargetType string    `json:"targetType"`
	TargetID   int64     `json:"targetId"`
	ParentID   int64     `json:"parentId,omitempty"`
	OwnerID    int64     `json:"ownerId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// QuestionResponse wraps a question.
type QuestionResponse struct {
	Success  bool      `json:"success"`
	Question *Question `json:"question"`
}

// AnswerResponse wraps an answer.
type AnswerResponse struct {
	Success bool    `json:"success"`
	Answer  *Answer `json:"answer"`
}

// CommentResponse wraps a comment.
type CommentResponse struct {
	Success bool     `json:"success"`
	Comment *Comment `json:"comment"`
}

// FavoriteResponse reports whether the favorite is new.
type FavoriteResponse struct {
	Success bool `json:"success"`
	Created bool `json:"created"`
}

// BadgeProgress is the progress toward one badge.
type BadgeProgress struct {
	BadgeID int64   `json:"badgeId"`
	Name    string  `json:"name"`
	Current int     `json:"current"`
	Target  int     `json:"target"`
	Ratio   float64 `json:"ratio"`
	Earned  bool    `json:"earned"`
}

// BadgeProgressResponse lists badge progress.
type BadgeProgressResponse struct {
	Success  bool             `json:"success"`
	Progress []*BadgeProgress `json:"progress"`
}

// AwardBadgeRequest lets an admin grant a badge.
type AwardBadgeRequest struct {
	UserID  int64  `json:"userId"`
	BadgeID int64  `json:"badgeId"`
	Reason  string `json:"reason"`
}

// AwardBadgeResponse reports whether the badge was newly awarded.
type AwardBadgeResponse struct {
	Success bool `json:"success"`
	Awarded bool `json:"awarded"`
}

// Notification is the public form of a notification.
type Notification struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	URL       string    `json:"url"`
	IsRead    bool      `json:"isRead"`
	RelatedID int64     `json:"relatedId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationsResponse lists notifications.
type NotificationsResponse struct {
	Success       bool            `json:"success"`
	Unread        int             `json:"unread"`
	Notifications []*Notification `json:"notifications"`
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

// ReputationEntry is one reputation ledger entry.
type ReputationEntry struct {
	ID        int64     `json:"id"`
	Amount    int       `json:"amount"`
	OldTotal  int       `json:"oldTotal"`
	NewTotal  int       `json:"newTotal"`
	Reason    string    `json:"reason"`
	RelatedID int64     `json:"relatedId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReputationResponse lists a user's reputation history.
type ReputationResponse struct {
	Success bool               `json:"success"`
	History []*ReputationEntry `json:"history"`
}
