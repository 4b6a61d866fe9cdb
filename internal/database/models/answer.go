package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AnswerModel handles database operations for answers.
type AnswerModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAnswer creates an AnswerModel.
func NewAnswer(db *bun.DB, logger *zap.Logger) *AnswerModel {
	return &AnswerModel{
		db:     db,
		logger: logger.Named("db_answer"),
	}
}

// CreateAnswer inserts an answer and fills in its ID.
func (r *AnswerModel) CreateAnswer(ctx context.Context, answer *types.Answer) error {
	now := time.Now().UTC()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		if _, err := r.db.NewInsert().Model(answer).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create answer: %w", err)
		}
		return nil
	})
}

// GetAnswerByID retrieves an answer outside of any transaction.
func (r *AnswerModel) GetAnswerByID(ctx context.Context, id int64) (*types.Answer, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Answer, error) {
		return r.GetAnswer(ctx, r.db, id, false)
	})
}

// GetAnswer retrieves an answer through idb, optionally locking the row.
func (r *AnswerModel) GetAnswer(ctx context.Context, idb bun.IDB, id int64, lock bool) (*types.Answer, error) {
	var answer types.Answer

	query := idb.NewSelect().Model(&answer).Where("id = ?", id)
	if lock {
		query = forUpdate(idb, query)
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	return &answer, nil
}

// EditAnswer replaces the body and bumps the edit counter.
func (r *AnswerModel) EditAnswer(ctx context.Context, idb bun.IDB, id int64, body string) error {
	_, err := idb.NewUpdate().
		Model((*types.Answer)(nil)).
		Set("body = ?", body).
		Set("edit_count = edit_count + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to edit answer: %w", err)
	}
	return nil
}

// MarkAccepted flags the answer as the accepted one.
func (r *AnswerModel) MarkAccepted(ctx context.Context, idb bun.IDB, id int64) error {
	_, err := idb.NewUpdate().
		Model((*types.Answer)(nil)).
		Set("is_accepted = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark answer accepted: %w", err)
	}
	return nil
}
