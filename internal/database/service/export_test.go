package service

import (
	"context"

	"github.com/agorahq/agora/internal/database/types"
)

// ActiveBadges exposes the shared catalog load to tests.
func (s *BadgeService) ActiveBadges(ctx context.Context) ([]*types.Badge, error) {
	return s.activeBadges(ctx)
}
