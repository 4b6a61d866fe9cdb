package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/models"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/notification"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

const (
	maxTitleLength = 300
	maxBodyLength  = 30000
)

// ContentService handles posting and editing questions, answers and
// comments, the actions that feed the badge counters.
type ContentService struct {
	db         *bun.DB
	users      *models.UserModel
	questions  *models.QuestionModel
	answers    *models.AnswerModel
	comments   *models.CommentModel
	favorites  *models.FavoriteModel
	reputation *ReputationService
	badges     *BadgeService
	notifier   Notifier
	logger     *zap.Logger
}

// NewContent creates a new content service.
func NewContent(
	db *bun.DB,
	users *models.UserModel,
	questions *models.QuestionModel,
	answers *models.AnswerModel,
	comments *models.CommentModel,
	favorites *models.FavoriteModel,
	reputation *ReputationService,
	badges *BadgeService,
	notifier Notifier,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		db:         db,
		users:      users,
		questions:  questions,
		answers:    answers,
		comments:   comments,
		favorites:  favorites,
		reputation: reputation,
		badges:     badges,
		notifier:   notifier,
		logger:     logger.Named("content_service"),
	}
}

// CreateQuestion posts a new question.
func (s *ContentService) CreateQuestion(ctx context.Context, ownerID int64, title, body string) (*types.Question, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	question := &types.Question{
		OwnerID: ownerID,
		Title:   title,
		Body:    body,
	}
	if err := s.questions.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}

	s.recheckBadges(ctx, ownerID)

	return question, nil
}

// PostAnswer adds an answer to a question and notifies the question owner
// and the viewers of the question.
func (s *ContentService) PostAnswer(ctx context.Context, ownerID, questionID int64, body string) (*types.Answer, error) {
	body = strings.TrimSpace(body)
	if err := validateBody(body); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer := &types.Answer{
		QuestionID: question.ID,
		OwnerID:    ownerID,
		Body:       body,
	}
	if err := s.answers.CreateAnswer(ctx, answer); err != nil {
		return nil, err
	}

	if n := notification.NewAnswer(question, answer); n != nil {
		s.notifier.Enqueue(n, realtime.UserChannel(n.RecipientID), realtime.QuestionChannel(question.ID))
	} else {
		s.notifier.Push(realtime.NewMessage(realtime.QuestionChannel(question.ID), realtime.EventNewAnswer, answer))
	}

	s.recheckBadges(ctx, ownerID)

	return answer, nil
}

// PostComment attaches a comment to a question or answer. A non-zero
// parentID makes it a reply, which must sit on the same target.
func (s *ContentService) PostComment(
	ctx context.Context, ownerID int64, kind enum.TargetKind, targetID, parentID int64, body string,
) (*types.Comment, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: target kind %d", types.ErrInvalidArgument, kind)
	}

	body = strings.TrimSpace(body)
	if err := validateBody(body); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	targetOwnerID, url, err := s.resolveTarget(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	var parent *types.Comment
	if parentID != 0 {
		parent, err = s.comments.GetCommentByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.TargetKind != kind || parent.TargetID != targetID {
			return nil, fmt.Errorf("%w: comment %d is not on this %s", types.ErrInvalidArgument, parentID, kind)
		}
	}

	comment := &types.Comment{
		TargetKind: kind,
		TargetID:   targetID,
		ParentID:   parentID,
		OwnerID:    ownerID,
		Body:       body,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	var n *types.Notification
	if parent != nil {
		n = notification.NewReply(parent, comment, url)
	} else {
		n = notification.NewComment(targetOwnerID, comment, url)
	}
	if n != nil {
		s.notifier.Enqueue(n)
	}

	s.recheckBadges(ctx, ownerID)

	return comment, nil
}

// EditQuestion replaces a question's title and body. Only the owner may edit.
func (s *ContentService) EditQuestion(ctx context.Context, editorID, questionID int64, title, body string) error {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateBody(body); err != nil {
		return err
	}

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		question, err := s.questions.GetQuestion(ctx, tx, questionID, true)
		if err != nil {
			return err
		}
		if question.OwnerID != editorID {
			return fmt.Errorf("%w: only the owner can edit this question", types.ErrForbidden)
		}
		return s.questions.EditQuestion(ctx, tx, questionID, title, body)
	})
	if err != nil {
		return err
	}

	s.recheckBadges(ctx, editorID)
	return nil
}

// EditAnswer replaces an answer's body. Only the owner may edit.
func (s *ContentService) EditAnswer(ctx context.Context, editorID, answerID int64, body string) error {
	body = strings.TrimSpace(body)
	if err := validateBody(body); err != nil {
		return err
	}

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		answer, err := s.answers.GetAnswer(ctx, tx, answerID, true)
		if err != nil {
			return err
		}
		if answer.OwnerID != editorID {
			return fmt.Errorf("%w: only the owner can edit this answer", types.ErrForbidden)
		}
		return s.answers.EditAnswer(ctx, tx, answerID, body)
	})
	if err != nil {
		return err
	}

	s.recheckBadges(ctx, editorID)
	return nil
}

// FavoriteQuestion stores a favorite. The first favorite by a user
// credits the question owner unless they favorited their own question.
// It reports whether the favorite is new.
func (s *ContentService) FavoriteQuestion(ctx context.Context, userID, questionID int64) (bool, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return false, err
	}

	var (
		created bool
		entry   *types.ReputationHistory
	)

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		created, entry = false, nil

		question, err := s.questions.GetQuestion(ctx, tx, questionID, false)
		if err != nil {
			return err
		}

		created, err = s.favorites.AddFavorite(ctx, tx, userID, questionID)
		if err != nil || !created || question.OwnerID == userID {
			return err
		}

		entry, err = s.reputation.CreditTx(ctx, tx, question.OwnerID,
			types.ActionFavorited.Amount, types.ActionFavorited.Reason, questionID)
		return err
	})
	if err != nil {
		return false, err
	}

	if entry != nil {
		s.reputation.NotifyChanged(ctx, entry)
		s.recheckBadges(ctx, entry.UserID)
	}

	return created, nil
}

// resolveTarget returns the owner of a commentable post and its URL.
func (s *ContentService) resolveTarget(
	ctx context.Context, kind enum.TargetKind, targetID int64,
) (int64, string, error) {
	switch kind {
	case enum.TargetKindQuestion:
		question, err := s.questions.GetQuestionByID(ctx, targetID)
		if err != nil {
			return 0, "", err
		}
		return question.OwnerID, notification.QuestionURL(question.ID), nil
	case enum.TargetKindAnswer:
		answer, err := s.answers.GetAnswerByID(ctx, targetID)
		if err != nil {
			return 0, "", err
		}
		return answer.OwnerID, notification.AnswerURL(answer.QuestionID, answer.ID), nil
	}
	return 0, "", fmt.Errorf("%w: target kind %d", types.ErrInvalidArgument, kind)
}

func (s *ContentService) recheckBadges(ctx context.Context, userID int64) {
	if _, err := s.badges.RecalculateAll(ctx, userID); err != nil {
		s.logger.Warn("Failed to recalculate badges",
			zap.Error(err),
			zap.Int64("userID", userID))
	}
}

func validateTitle(title string) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", types.ErrInvalidArgument)
	case len(title) > maxTitleLength:
		return fmt.Errorf("%w: title exceeds %d characters", types.ErrInvalidArgument, maxTitleLength)
	}
	return nil
}

func validateBody(body string) error {
	switch {
	case body == "":
		return fmt.Errorf("%w: body is required", types.ErrInvalidArgument)
	case len(body) > maxBodyLength:
		return fmt.Errorf("%w: body exceeds %d characters", types.ErrInvalidArgument, maxBodyLength)
	}
	return nil
}
