package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/models"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/notification"
	"github.com/sourcegraph/conc/pool"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultProgressCount is how many unearned badges GetTopUnearnedProgress
// returns when the caller does not ask for a count.
const DefaultProgressCount = 3

const maxCountingQueries = 4

// BadgeService handles badge progress and awarding.
type BadgeService struct {
	db         *bun.DB
	model      *models.BadgeModel
	users      *models.UserModel
	reputation *ReputationService
	notifier   Notifier
	catalog    singleflight.Group
	logger     *zap.Logger
}

// NewBadge creates a new badge service.
func NewBadge(
	db *bun.DB,
	model *models.BadgeModel,
	users *models.UserModel,
	reputation *ReputationService,
	notifier Notifier,
	logger *zap.Logger,
) *BadgeService {
	return &BadgeService{
		db:         db,
		model:      model,
		users:      users,
		reputation: reputation,
		notifier:   notifier,
		logger:     logger.Named("badge_service"),
	}
}

// activeBadges loads the catalog, sharing one query between concurrent
// callers. The shared query ignores the first caller's cancellation.
func (s *BadgeService) activeBadges(ctx context.Context) ([]*types.Badge, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.catalog.Do("active", func() (any, error) {
		return s.model.GetActiveBadges(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.Badge), nil
}

// ComputeProgress measures a user's progress toward one badge. It has no
// side effects.
func (s *BadgeService) ComputeProgress(
	ctx context.Context, userID int64, badge *types.Badge,
) (*types.BadgeProgress, error) {
	current, err := s.model.CountForCriteria(ctx, userID, badge.Criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", badge.Criteria, err)
	}

	assigned, err := s.model.CountAssignments(ctx, userID, badge.ID)
	if err != nil {
		return nil, err
	}

	return &types.BadgeProgress{
		BadgeID: badge.ID,
		Name:    badge.Name,
		Current: current,
		Target:  badge.TargetCount,
		Earned:  assigned > 0,
	}, nil
}

// computeAll measures every active badge, running the counting queries
// in parallel.
func (s *BadgeService) computeAll(
	ctx context.Context, userID int64,
) ([]*types.BadgeProgress, map[int64]*types.Badge, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, nil, err
	}

	badges, err := s.activeBadges(ctx)
	if err != nil {
		return nil, nil, err
	}

	earned, err := s.model.GetEarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	progress := make([]*types.BadgeProgress, len(badges))
	byID := make(map[int64]*types.Badge, len(badges))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(maxCountingQueries)
	for i, badge := range badges {
		byID[badge.ID] = badge

		p.Go(func(ctx context.Context) error {
			current, err := s.model.CountForCriteria(ctx, userID, badge.Criteria)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", badge.Criteria, err)
			}

			_, done := earned[badge.ID]
			progress[i] = &types.BadgeProgress{
				BadgeID: badge.ID,
				Name:    badge.Name,
				Current: current,
				Target:  badge.TargetCount,
				Earned:  done,
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, nil, err
	}

	return progress, byID, nil
}

// GetTopUnearnedProgress returns the unearned badges closest to
// completion, highest ratio first.
func (s *BadgeService) GetTopUnearnedProgress(
	ctx context.Context, userID int64, count int,
) ([]*types.BadgeProgress, error) {
	if count <= 0 {
		count = DefaultProgressCount
	}

	progress, _, err := s.computeAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	unearned := make([]*types.BadgeProgress, 0, len(progress))
	for _, p := range progress {
		if !p.Earned {
			unearned = append(unearned, p)
		}
	}

	sort.SliceStable(unearned, func(i, j int) bool {
		ri, rj := unearned[i].Ratio(), unearned[j].Ratio()
		if ri != rj {
			return ri > rj
		}
		return unearned[i].BadgeID < unearned[j].BadgeID
	})

	if len(unearned) > count {
		unearned = unearned[:count]
	}
	return unearned, nil
}

// UpdateProgress recomputes one badge, pushes the progress to the user's
// badge channel and awards the badge once its target is reached.
func (s *BadgeService) UpdateProgress(
	ctx context.Context, userID, badgeID int64,
) (*types.BadgeProgress, error) {
	badge, err := s.model.GetBadgeByID(ctx, badgeID)
	if err != nil {
		return nil, err
	}

	progress, err := s.ComputeProgress(ctx, userID, badge)
	if err != nil {
		return nil, err
	}

	if badge.IsActive && !progress.Earned && progress.Complete() {
		awarded, err := s.award(ctx, userID, badge, "Reached "+progress.Name+" target")
		if err != nil {
			return nil, err
		}
		progress.Earned = progress.Earned || awarded
	}

	s.notifier.Push(notification.BadgeProgress(userID, []*types.BadgeProgress{progress}))

	return progress, nil
}

// RecalculateAll recomputes every active badge for a user, awards the
// completed ones and pushes the result to the user's badge channel.
func (s *BadgeService) RecalculateAll(ctx context.Context, userID int64) ([]*types.BadgeProgress, error) {
	progress, byID, err := s.computeAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, p := range progress {
		if p.Earned || !p.Complete() {
			continue
		}

		awarded, err := s.award(ctx, userID, byID[p.BadgeID], "Reached "+p.Name+" target")
		if err != nil {
			return nil, err
		}
		p.Earned = awarded
	}

	s.notifier.Push(notification.BadgeProgress(userID, progress))

	return progress, nil
}

// AwardBadge assigns a badge and credits its reputation bonus. It returns
// false without error when the user already holds the badge.
func (s *BadgeService) AwardBadge(ctx context.Context, userID, badgeID int64, reason string) (bool, error) {
	badge, err := s.model.GetBadgeByID(ctx, badgeID)
	if err != nil {
		return false, err
	}
	return s.award(ctx, userID, badge, reason)
}

func (s *BadgeService) award(ctx context.Context, userID int64, badge *types.Badge, reason string) (bool, error) {
	var (
		created bool
		entry   *types.ReputationHistory
	)

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		created, entry = false, nil

		// Locking the user serializes concurrent awards for the same user.
		if _, err := s.users.GetUser(ctx, tx, userID, true); err != nil {
			return err
		}

		var err error
		created, err = s.model.AssignBadge(ctx, tx, &types.BadgeAssignment{
			UserID:    userID,
			BadgeID:   badge.ID,
			AwardedAt: time.Now().UTC(),
			Reason:    reason,
		})
		if err != nil || !created || badge.ReputationBonus == 0 {
			return err
		}

		entry, err = s.reputation.CreditTx(ctx, tx, userID, badge.ReputationBonus,
			enum.ReputationReasonBadgeAwarded, badge.ID)
		return err
	})
	if err != nil {
		return false, err
	}

	if !created {
		return false, nil
	}

	s.logger.Info("Awarded badge",
		zap.Int64("userID", userID),
		zap.Int64("badgeID", badge.ID),
		zap.String("badge", badge.Name),
		zap.String("reason", reason))

	s.notifier.Enqueue(notification.BadgeAwarded(userID, badge))
	s.reputation.NotifyChanged(ctx, entry)

	return true, nil
}
