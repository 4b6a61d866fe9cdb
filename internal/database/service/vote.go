package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/models"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/notification"
	"github.com/agorahq/agora/internal/vote"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// VoteService handles voting and answer acceptance.
type VoteService struct {
	db         *bun.DB
	users      *models.UserModel
	votes      *models.VoteModel
	questions  *models.QuestionModel
	answers    *models.AnswerModel
	reputation *ReputationService
	badges     *BadgeService
	notifier   Notifier
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewVote creates a new vote service.
func NewVote(
	db *bun.DB,
	users *models.UserModel,
	votes *models.VoteModel,
	questions *models.QuestionModel,
	answers *models.AnswerModel,
	reputation *ReputationService,
	badges *BadgeService,
	notifier Notifier,
	logger *zap.Logger,
) *VoteService {
	return &VoteService{
		db:         db,
		users:      users,
		votes:      votes,
		questions:  questions,
		answers:    answers,
		reputation: reputation,
		badges:     badges,
		notifier:   notifier,
		tracer:     otel.Tracer("github.com/agorahq/agora/internal/database/service"),
		logger:     logger.Named("vote_service"),
	}
}

// CastVote applies a vote request. The vote row, the target's score and
// the owner's reputation change commit together; notifications and badge
// checks follow the commit and never fail the call.
func (s *VoteService) CastVote(
	ctx context.Context, voterID, targetID int64, kind enum.TargetKind, requested enum.VoteRequest,
) (result *types.VoteResult, err error) {
	ctx, span := s.tracer.Start(ctx, "VoteService.CastVote", trace.WithAttributes(
		attribute.Int64("voter.id", voterID),
		attribute.Int64("target.id", targetID),
		attribute.String("target.kind", kind.String()),
		attribute.String("vote.request", requested.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if voterID <= 0 {
		return nil, types.ErrUnauthorized
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: target kind %d", types.ErrInvalidArgument, kind)
	}
	if requested != enum.VoteRequestUp && requested != enum.VoteRequestDown && requested != enum.VoteRequestRemove {
		return nil, fmt.Errorf("%w: vote request %d", types.ErrInvalidArgument, requested)
	}

	var (
		target *types.Votable
		entry  *types.ReputationHistory
	)

	err = dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		entry = nil

		// A token can outlive its user.
		if _, err := s.users.GetUser(ctx, tx, voterID, false); err != nil {
			if errors.Is(err, types.ErrUserNotFound) {
				return types.ErrUnauthorized
			}
			return err
		}

		var err error
		target, err = s.votes.GetTarget(ctx, tx, kind, targetID)
		if err != nil {
			return err
		}

		current, err := s.votes.GetDirection(ctx, tx, voterID, targetID, kind)
		if err != nil {
			return err
		}

		outcome := vote.Decide(current, requested)
		result = &types.VoteResult{
			Applied:    outcome.Applied,
			ScoreDelta: outcome.ScoreDelta,
			Previous:   outcome.Previous,
			Current:    outcome.Current,
			NewScore:   target.Score,
			OwnerID:    target.OwnerID,
		}

		if !outcome.Applied {
			return nil
		}

		if err := s.votes.SaveVote(ctx, tx, voterID, targetID, kind, outcome.Current); err != nil {
			return err
		}

		result.NewScore, err = s.votes.AdjustScore(ctx, tx, kind, targetID, outcome.ScoreDelta)
		if err != nil {
			return err
		}

		if voterID == target.OwnerID {
			return nil
		}

		credit, ok := vote.ReputationCredit(kind, outcome)
		if !ok {
			return nil
		}

		result.ReputationDelta = credit.Amount
		entry, err = s.reputation.CreditTx(ctx, tx, target.OwnerID, credit.Amount, credit.Reason, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !result.Applied {
		return result, nil
	}

	s.logger.Debug("Vote applied",
		zap.Int64("voterID", voterID),
		zap.Int64("targetID", targetID),
		zap.String("kind", kind.String()),
		zap.String("previous", result.Previous.String()),
		zap.String("current", result.Current.String()),
		zap.Int("newScore", result.NewScore))

	s.reputation.NotifyChanged(ctx, entry)

	if n := notification.VoteReceived(target, voterID, result.Current); n != nil {
		s.notifier.Enqueue(n)
	}

	if kind == enum.TargetKindQuestion {
		s.notifier.Push(notification.QuestionUpdated(notification.QuestionUpdate{
			QuestionID: targetID,
			Score:      result.NewScore,
		}))
	}

	s.recheckBadges(ctx, voterID, target.OwnerID)

	return result, nil
}

// AcceptAnswer marks an answer as the accepted one for its question. Only
// the question owner may accept. Accepting the already accepted answer
// returns false without error; accepting a different one is a conflict.
func (s *VoteService) AcceptAnswer(ctx context.Context, callerID, questionID, answerID int64) (bool, error) {
	if callerID <= 0 {
		return false, types.ErrUnauthorized
	}

	var (
		question *types.Question
		answer   *types.Answer
		applied  bool
		entries  []*types.ReputationHistory
	)

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		applied, entries = false, nil

		var err error
		question, err = s.questions.GetQuestion(ctx, tx, questionID, true)
		if err != nil {
			return err
		}
		if question.OwnerID != callerID {
			return fmt.Errorf("%w: only the question owner can accept an answer", types.ErrForbidden)
		}

		answer, err = s.answers.GetAnswer(ctx, tx, answerID, true)
		if err != nil {
			return err
		}
		if answer.QuestionID != question.ID {
			return fmt.Errorf("%w: answer %d does not belong to question %d",
				types.ErrInvalidArgument, answerID, questionID)
		}

		switch question.AcceptedAnswerID {
		case answer.ID:
			return nil
		case 0:
		default:
			return fmt.Errorf("%w: question %d already has an accepted answer", types.ErrConflict, questionID)
		}

		if err := s.answers.MarkAccepted(ctx, tx, answer.ID); err != nil {
			return err
		}
		if err := s.questions.MarkResolved(ctx, tx, question.ID, answer.ID); err != nil {
			return err
		}
		applied = true

		if answer.OwnerID == question.OwnerID {
			return nil
		}

		for _, c := range []struct {
			userID int64
			action types.ReputationAction
		}{
			{answer.OwnerID, types.ActionAnswerAccepted},
			{question.OwnerID, types.ActionAcceptedAnswer},
		} {
			entry, err := s.reputation.CreditTx(ctx, tx, c.userID, c.action.Amount, c.action.Reason, answer.ID)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if !applied {
		return false, nil
	}

	s.logger.Info("Answer accepted",
		zap.Int64("questionID", questionID),
		zap.Int64("answerID", answerID),
		zap.Int64("answerOwnerID", answer.OwnerID))

	for _, entry := range entries {
		s.reputation.NotifyChanged(ctx, entry)
	}

	s.notifier.Push(notification.QuestionUpdated(notification.QuestionUpdate{
		QuestionID:       question.ID,
		Score:            question.Score,
		IsResolved:       true,
		AcceptedAnswerID: answer.ID,
	}))

	if n := notification.AnswerAccepted(question, answer); n != nil {
		s.notifier.Enqueue(n)
	}

	s.recheckBadges(ctx, answer.OwnerID, question.OwnerID)

	return true, nil
}

// recheckBadges recalculates badge progress for each distinct user.
// Failures are logged only.
func (s *VoteService) recheckBadges(ctx context.Context, userIDs ...int64) {
	seen := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, err := s.badges.RecalculateAll(ctx, id); err != nil {
			s.logger.Warn("Failed to recalculate badges",
				zap.Error(err),
				zap.Int64("userID", id))
		}
	}
}
