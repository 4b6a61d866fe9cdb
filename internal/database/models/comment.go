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

// CommentModel handles database operations for comments.
type CommentModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewComment creates a CommentModel.
func NewComment(db *bun.DB, logger *zap.Logger) *CommentModel {
	return &CommentModel{
		db:     db,
		logger: logger.Named("db_comment"),
	}
}

// CreateComment inserts a comment and fills in its ID.
func (r *CommentModel) CreateComment(ctx context.Context, comment *types.Comment) error {
	comment.CreatedAt = time.Now().UTC()

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		if _, err := r.db.NewInsert().Model(comment).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
}

// GetCommentByID retrieves a comment.
func (r *CommentModel) GetCommentByID(ctx context.Context, id int64) (*types.Comment, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Comment, error) {
		var comment types.Comment

		err := r.db.NewSelect().Model(&comment).Where("id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrCommentNotFound
			}
			return nil, fmt.Errorf("failed to get comment: %w", err)
		}

		return &comment, nil
	})
}
