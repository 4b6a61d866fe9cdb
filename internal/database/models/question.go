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

// QuestionModel handles database operations for questions.
type QuestionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewQuestion creates a QuestionModel.
func NewQuestion(db *bun.DB, logger *zap.Logger) *QuestionModel {
	return &QuestionModel{
		db:     db,
		logger: logger.Named("db_question"),
	}
}

// CreateQuestion inserts a question and fills in its ID.
func (r *QuestionModel) CreateQuestion(ctx context.Context, question *types.Question) error {
	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		if _, err := r.db.NewInsert().Model(question).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
}

// GetQuestionByID retrieves a question outside of any transaction.
func (r *QuestionModel) GetQuestionByID(ctx context.Context, id int64) (*types.Question, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Question, error) {
		return r.GetQuestion(ctx, r.db, id, false)
	})
}

// GetQuestion retrieves a question through idb, optionally locking the row.
func (r *QuestionModel) GetQuestion(
	ctx context.Context, idb bun.IDB, id int64, lock bool,
) (*types.Question, error) {
	var question types.Question

	query := idb.NewSelect().Model(&question).Where("id = ?", id)
	if lock {
		query = forUpdate(idb, query)
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return &question, nil
}

// EditQuestion replaces the title and body and bumps the edit counter.
func (r *QuestionModel) EditQuestion(ctx context.Context, idb bun.IDB, id int64, title, body string) error {
	_, err := idb.NewUpdate().
		Model((*types.Question)(nil)).
		Set("title = ?", title).
		Set("body = ?", body).
		Set("edit_count = edit_count + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to edit question: %w", err)
	}
	return nil
}

// MarkResolved records the accepted answer on the question.
func (r *QuestionModel) MarkResolved(ctx context.Context, idb bun.IDB, id, answerID int64) error {
	_, err := idb.NewUpdate().
		Model((*types.Question)(nil)).
		Set("is_resolved = ?", true).
		Set("accepted_answer_id = ?", answerID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark question resolved: %w", err)
	}
	return nil
}
