package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// BadgeModel handles the badge catalog, assignments and the activity
// counters badges are measured against.
type BadgeModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewBadge creates a BadgeModel.
func NewBadge(db *bun.DB, logger *zap.Logger) *BadgeModel {
	return &BadgeModel{
		db:     db,
		logger: logger.Named("db_badge"),
	}
}

// GetActiveBadges returns the active catalog ordered by ID.
func (r *BadgeModel) GetActiveBadges(ctx context.Context) ([]*types.Badge, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Badge, error) {
		var badges []*types.Badge

		err := r.db.NewSelect().
			Model(&badges).
			Where("is_active = ?", true).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get badges: %w", err)
		}

		return badges, nil
	})
}

// GetBadgeByID retrieves a single badge, active or not.
func (r *BadgeModel) GetBadgeByID(ctx context.Context, id int64) (*types.Badge, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Badge, error) {
		var badge types.Badge

		err := r.db.NewSelect().Model(&badge).Where("id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrBadgeNotFound
			}
			return nil, fmt.Errorf("failed to get badge: %w", err)
		}

		return &badge, nil
	})
}

// GetEarnedBadgeIDs returns the set of badges assigned to a user.
func (r *BadgeModel) GetEarnedBadgeIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (map[int64]struct{}, error) {
		var ids []int64

		err := r.db.NewSelect().
			Model((*types.BadgeAssignment)(nil)).
			Column("badge_id").
			Where("user_id = ?", userID).
			Scan(ctx, &ids)
		if err != nil {
			return nil, fmt.Errorf("failed to get earned badges: %w", err)
		}

		earned := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			earned[id] = struct{}{}
		}
		return earned, nil
	})
}

// AssignBadge inserts the assignment unless one exists and reports whether
// a row was written.
func (r *BadgeModel) AssignBadge(ctx context.Context, idb bun.IDB, assignment *types.BadgeAssignment) (bool, error) {
	res, err := idb.NewInsert().
		Model(assignment).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to assign badge: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read assignment result: %w", err)
	}

	return affected > 0, nil
}

// CountAssignments counts how many times a user holds a badge.
func (r *BadgeModel) CountAssignments(ctx context.Context, userID, badgeID int64) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return r.db.NewSelect().
			Model((*types.BadgeAssignment)(nil)).
			Where("user_id = ?", userID).
			Where("badge_id = ?", badgeID).
			Count(ctx)
	})
}

// CountForCriteria runs the counting query a badge criteria measures.
func (r *BadgeModel) CountForCriteria(ctx context.Context, userID int64, criteria enum.BadgeCriteria) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		switch criteria {
		case enum.BadgeCriteriaQuestionsWithPositiveScore:
			return r.db.NewSelect().Model((*types.Question)(nil)).
				Where("owner_id = ?", userID).Where("score > 0").Count(ctx)

		case enum.BadgeCriteriaAnswersWithScoreAtLeast3:
			return r.db.NewSelect().Model((*types.Answer)(nil)).
				Where("owner_id = ?", userID).Where("score >= 3").Count(ctx)

		case enum.BadgeCriteriaEditedPosts:
			questions, err := r.db.NewSelect().Model((*types.Question)(nil)).
				Where("owner_id = ?", userID).Where("edit_count > 0").Count(ctx)
			if err != nil {
				return 0, err
			}
			answers, err := r.db.NewSelect().Model((*types.Answer)(nil)).
				Where("owner_id = ?", userID).Where("edit_count > 0").Count(ctx)
			if err != nil {
				return 0, err
			}
			return questions + answers, nil

		case enum.BadgeCriteriaQuestionsAsked:
			return r.db.NewSelect().Model((*types.Question)(nil)).
				Where("owner_id = ?", userID).Count(ctx)

		case enum.BadgeCriteriaAnswersPosted:
			return r.db.NewSelect().Model((*types.Answer)(nil)).
				Where("owner_id = ?", userID).Count(ctx)

		case enum.BadgeCriteriaAcceptedAnswers:
			return r.db.NewSelect().Model((*types.Answer)(nil)).
				Where("owner_id = ?", userID).Where("is_accepted = ?", true).Count(ctx)

		case enum.BadgeCriteriaCommentsPosted:
			return r.db.NewSelect().Model((*types.Comment)(nil)).
				Where("owner_id = ?", userID).Count(ctx)

		case enum.BadgeCriteriaVotesCast:
			return r.db.NewSelect().Model((*types.Vote)(nil)).
				Where("voter_id = ?", userID).Count(ctx)

		case enum.BadgeCriteriaReputationReached:
			var reputation int
			err := r.db.NewSelect().Model((*types.User)(nil)).
				Column("reputation").Where("id = ?", userID).Scan(ctx, &reputation)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return 0, types.ErrUserNotFound
				}
				return 0, err
			}
			return reputation, nil
		}

		return 0, fmt.Errorf("%w: badge criteria %d", types.ErrInvalidArgument, criteria)
	})
}
