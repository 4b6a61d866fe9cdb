package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// VoteModel handles votes and the cached scores they drive.
type VoteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewVote creates a VoteModel.
func NewVote(db *bun.DB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// GetTarget loads the votable projection of a question or answer and locks
// its row for the rest of the transaction.
func (r *VoteModel) GetTarget(
	ctx context.Context, idb bun.IDB, kind enum.TargetKind, id int64,
) (*types.Votable, error) {
	target := &types.Votable{Kind: kind, ID: id}

	switch kind {
	case enum.TargetKindQuestion:
		var q types.Question
		err := forUpdate(idb, idb.NewSelect().Model(&q).Where("id = ?", id)).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrQuestionNotFound
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		target.OwnerID = q.OwnerID
		target.QuestionID = q.ID
		target.Score = q.Score

	case enum.TargetKindAnswer:
		var a types.Answer
		err := forUpdate(idb, idb.NewSelect().Model(&a).Where("id = ?", id)).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrAnswerNotFound
			}
			return nil, fmt.Errorf("failed to get answer: %w", err)
		}
		target.OwnerID = a.OwnerID
		target.QuestionID = a.QuestionID
		target.Score = a.Score

	default:
		return nil, fmt.Errorf("%w: target kind %d", types.ErrInvalidArgument, kind)
	}

	return target, nil
}

// GetDirection returns the voter's standing direction on a target, or
// VoteDirectionNone when no vote exists.
func (r *VoteModel) GetDirection(
	ctx context.Context, idb bun.IDB, voterID, targetID int64, kind enum.TargetKind,
) (enum.VoteDirection, error) {
	var v types.Vote

	err := idb.NewSelect().
		Model(&v).
		Where("voter_id = ?", voterID).
		Where("target_id = ?", targetID).
		Where("target_kind = ?", kind).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return enum.VoteDirectionNone, nil
		}
		return enum.VoteDirectionNone, fmt.Errorf("failed to get vote: %w", err)
	}

	return v.Direction, nil
}

// SaveVote writes the voter's direction, replacing any existing row.
// VoteDirectionNone deletes the row.
func (r *VoteModel) SaveVote(
	ctx context.Context, idb bun.IDB, voterID, targetID int64, kind enum.TargetKind, direction enum.VoteDirection,
) error {
	if direction == enum.VoteDirectionNone {
		_, err := idb.NewDelete().
			Model((*types.Vote)(nil)).
			Where("voter_id = ?", voterID).
			Where("target_id = ?", targetID).
			Where("target_kind = ?", kind).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete vote: %w", err)
		}
		return nil
	}

	v := &types.Vote{
		VoterID:    voterID,
		TargetID:   targetID,
		TargetKind: kind,
		Direction:  direction,
		VotedAt:    time.Now().UTC(),
	}

	_, err := idb.NewInsert().
		Model(v).
		On("CONFLICT (voter_id, target_id, target_kind) DO UPDATE").
		Set("direction = EXCLUDED.direction").
		Set("voted_at = EXCLUDED.voted_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

// AdjustScore atomically adds delta to the target's cached score and
// returns the new value. Scores are not clamped.
func (r *VoteModel) AdjustScore(
	ctx context.Context, idb bun.IDB, kind enum.TargetKind, id int64, delta int,
) (int, error) {
	var model any
	switch kind {
	case enum.TargetKindQuestion:
		model = (*types.Question)(nil)
	case enum.TargetKindAnswer:
		model = (*types.Answer)(nil)
	default:
		return 0, fmt.Errorf("%w: target kind %d", types.ErrInvalidArgument, kind)
	}

	_, err := idb.NewUpdate().
		Model(model).
		Set("score = score + ?", delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust score: %w", err)
	}

	var score int
	err = idb.NewSelect().
		Model(model).
		Column("score").
		Where("id = ?", id).
		Scan(ctx, &score)
	if err != nil {
		return 0, fmt.Errorf("failed to read score: %w", err)
	}

	return score, nil
}

// FindScoreDrift lists targets of the given kind whose cached score no
// longer equals the sum of their vote directions.
func (r *VoteModel) FindScoreDrift(ctx context.Context, kind enum.TargetKind) ([]types.ScoreDrift, error) {
	var model any
	switch kind {
	case enum.TargetKindQuestion:
		model = (*types.Question)(nil)
	case enum.TargetKindAnswer:
		model = (*types.Answer)(nil)
	default:
		return nil, fmt.Errorf("%w: target kind %d", types.ErrInvalidArgument, kind)
	}

	return dbretry.Operation(ctx, func(ctx context.Context) ([]types.ScoreDrift, error) {
		var drifts []types.ScoreDrift

		err := r.db.NewSelect().
			Model(model).
			ColumnExpr("?TableAlias.id AS id, ?TableAlias.score AS score").
			ColumnExpr("COALESCE(SUM(v.direction), 0) AS tally").
			Join("LEFT JOIN votes AS v ON v.target_id = ?TableAlias.id AND v.target_kind = ?", kind).
			GroupExpr("?TableAlias.id, ?TableAlias.score").
			Having("?TableAlias.score <> COALESCE(SUM(v.direction), 0)").
			OrderExpr("?TableAlias.id ASC").
			Scan(ctx, &drifts)
		if err != nil {
			return nil, fmt.Errorf("failed to find score drift: %w", err)
		}

		return drifts, nil
	})
}
