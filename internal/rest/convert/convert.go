// Package convert maps database types to their REST representations.
package convert

import (
	"github.com/agorahq/agora/internal/database/types"
	restTypes "github.com/agorahq/agora/internal/rest/types"
)

// Question converts a question.
func Question(q *types.Question) *restTypes.Question {
	return &restTypes.Question{
		ID:               q.ID,
		OwnerID:          q.OwnerID,
		Title:            q.Title,
		Body:             q.Body,
		Score:            q.Score,
		IsResolved:       q.IsResolved,
		AcceptedAnswerID: q.AcceptedAnswerID,
		CreatedAt:        q.CreatedAt,
	}
}

// Answer converts an answer.
func Answer(a *types.Answer) *restTypes.Answer {
	return &restTypes.Answer{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		OwnerID:    a.OwnerID,
		Body:       a.Body,
		Score:      a.Score,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
	}
}

// Comment converts a comment.
func Comment(c *types.Comment) *restTypes.Comment {
	return &restTypes.Comment{
		ID:         c.ID,
		TargetType: c.TargetKind.String(),
		TargetID:   c.TargetID,
		ParentID:   c.ParentID,
		OwnerID:    c.OwnerID,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

// BadgeProgress converts a progress list.
func BadgeProgress(progress []*types.BadgeProgress) []*restTypes.BadgeProgress {
	result := make([]*restTypes.BadgeProgress, 0, len(progress))
	for _, p := range progress {
		result = append(result, &restTypes.BadgeProgress{
			BadgeID: p.BadgeID,
			Name:    p.Name,
			Current: p.Current,
			Target:  p.Target,
			Ratio:   p.Ratio(),
			Earned:  p.Earned,
		})
	}
	return result
}

// Notifications converts a notification list.
func Notifications(notifications []*types.Notification) []*restTypes.Notification {
	result := make([]*restTypes.Notification, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, &restTypes.Notification{
			ID:        n.ID,
			Type:      n.Type.String(),
			Title:     n.Title,
			Message:   n.Message,
			URL:       n.URL,
			IsRead:    n.IsRead,
			RelatedID: n.RelatedID,
			CreatedAt: n.CreatedAt,
		})
	}
	return result
}

// ReputationHistory converts ledger entries.
func ReputationHistory(entries []*types.ReputationHistory) []*restTypes.ReputationEntry {
	result := make([]*restTypes.ReputationEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, &restTypes.ReputationEntry{
			ID:        e.ID,
			Amount:    e.Amount,
			OldTotal:  e.OldTotal,
			NewTotal:  e.NewTotal,
			Reason:    e.Reason.String(),
			RelatedID: e.RelatedID,
			CreatedAt: e.CreatedAt,
		})
	}
	return result
}
