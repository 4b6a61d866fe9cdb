package database

import (
	"time"

	"github.com/agorahq/agora/internal/database/service"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	reputation   *service.ReputationService
	badge        *service.BadgeService
	vote         *service.VoteService
	content      *service.ContentService
	notification *service.NotificationService
}

// NewService creates a new service instance with all services. The
// notifier receives every notification and realtime message the services
// produce; reputationThrottle limits reputation-changed notifications.
func NewService(
	db *bun.DB, repository *Repository, notifier service.Notifier, reputationThrottle time.Duration, logger *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = service.NopNotifier{}
	}

	reputation := service.NewReputation(
		db,
		repository.Reputation(),
		repository.User(),
		repository.Notification(),
		notifier,
		reputationThrottle,
		logger,
	)
	badge := service.NewBadge(
		db,
		repository.Badge(),
		repository.User(),
		reputation,
		notifier,
		logger,
	)
	vote := service.NewVote(
		db,
		repository.User(),
		repository.Vote(),
		repository.Question(),
		repository.Answer(),
		reputation,
		badge,
		notifier,
		logger,
	)
	content := service.NewContent(
		db,
		repository.User(),
		repository.Question(),
		repository.Answer(),
		repository.Comment(),
		repository.Favorite(),
		reputation,
		badge,
		notifier,
		logger,
	)

	return &Service{
		reputation:   reputation,
		badge:        badge,
		vote:         vote,
		content:      content,
		notification: service.NewNotification(repository.Notification(), logger),
	}
}

// Reputation returns the reputation service.
func (s *Service) Reputation() *service.ReputationService {
	return s.reputation
}

// Badge returns the badge service.
func (s *Service) Badge() *service.BadgeService {
	return s.badge
}

// Vote returns the vote service.
func (s *Service) Vote() *service.VoteService {
	return s.vote
}

// Content returns the content service.
func (s *Service) Content() *service.ContentService {
	return s.content
}

// Notification returns the notification service.
func (s *Service) Notification() *service.NotificationService {
	return s.notification
}
