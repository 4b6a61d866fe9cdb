package models

import (
	"context"
	"fmt"
	"time"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// FavoriteModel handles database operations for favorited questions.
type FavoriteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewFavorite creates a FavoriteModel.
func NewFavorite(db *bun.DB, logger *zap.Logger) *FavoriteModel {
	return &FavoriteModel{
		db:     db,
		logger: logger.Named("db_favorite"),
	}
}

// AddFavorite stores the favorite and reports whether it is new.
func (r *FavoriteModel) AddFavorite(ctx context.Context, idb bun.IDB, userID, questionID int64) (bool, error) {
	favorite := &types.Favorite{
		UserID:     userID,
		QuestionID: questionID,
		CreatedAt:  time.Now().UTC(),
	}

	res, err := idb.NewInsert().
		Model(favorite).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read favorite result: %w", err)
	}

	return affected > 0, nil
}
