package database

import (
	"github.com/agorahq/agora/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	user         *models.UserModel
	question     *models.QuestionModel
	answer       *models.AnswerModel
	comment      *models.CommentModel
	favorite     *models.FavoriteModel
	vote         *models.VoteModel
	reputation   *models.ReputationModel
	badge        *models.BadgeModel
	notification *models.NotificationModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	user := models.NewUser(db, logger)

	return &Repository{
		user:         user,
		question:     models.NewQuestion(db, logger),
		answer:       models.NewAnswer(db, logger),
		comment:      models.NewComment(db, logger),
		favorite:     models.NewFavorite(db, logger),
		vote:         models.NewVote(db, logger),
		reputation:   models.NewReputation(db, user, logger),
		badge:        models.NewBadge(db, logger),
		notification: models.NewNotification(db, logger),
	}
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Question returns the question model repository.
func (r *Repository) Question() *models.QuestionModel {
	return r.question
}

// Answer returns the answer model repository.
func (r *Repository) Answer() *models.AnswerModel {
	return r.answer
}

// Comment returns the comment model repository.
func (r *Repository) Comment() *models.CommentModel {
	return r.comment
}

// Favorite returns the favorite model repository.
func (r *Repository) Favorite() *models.FavoriteModel {
	return r.favorite
}

// Vote returns the vote model repository.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Reputation returns the reputation model repository.
func (r *Repository) Reputation() *models.ReputationModel {
	return r.reputation
}

// Badge returns the badge model repository.
func (r *Repository) Badge() *models.BadgeModel {
	return r.badge
}

// Notification returns the notification model repository.
func (r *Repository) Notification() *models.NotificationModel {
	return r.notification
}
