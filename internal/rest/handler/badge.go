package handler

import (
	"fmt"
	"net/http"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/rest/convert"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	restTypes "github.com/agorahq/agora/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

const maxProgressCount = 20

// BadgeHandler handles badge progress and awarding.
type BadgeHandler struct {
	services      *database.Service
	progressCount int
	logger        *zap.Logger
}

// NewBadgeHandler creates a new badge handler. progressCount is the
// default number of badges returned by GetProgress.
func NewBadgeHandler(services *database.Service, progressCount int, logger *zap.Logger) *BadgeHandler {
	return &BadgeHandler{
		services:      services,
		progressCount: progressCount,
		logger:        logger.Named("badge_handler"),
	}
}

// GetProgress returns the caller's unearned badges closest to completion.
func (h *BadgeHandler) GetProgress(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	count, err := queryInt(req, "count", h.progressCount)
	if err != nil {
		return err
	}
	if count > maxProgressCount {
		count = maxProgressCount
	}

	progress, err := h.services.Badge().GetTopUnearnedProgress(req.Context(), identity.UserID, count)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.BadgeProgressResponse{
		Success:  true,
		Progress: convert.BadgeProgress(progress),
	})
}

// Recalculate recomputes every badge for the caller and awards the ones reached.
func (h *BadgeHandler) Recalculate(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	progress, err := h.services.Badge().RecalculateAll(req.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.BadgeProgressResponse{
		Success:  true,
		Progress: convert.BadgeProgress(progress),
	})
}

// Award grants a badge to a user. Admin only.
func (h *BadgeHandler) Award(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.RequireAdmin(req.Context())
	if err != nil {
		return err
	}

	var body restTypes.AwardBadgeRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	if body.UserID <= 0 || body.BadgeID <= 0 {
		return fmt.Errorf("%w: userId and badgeId are required", types.ErrInvalidArgument)
	}

	reason := body.Reason
	if reason == "" {
		reason = fmt.Sprintf("Awarded by admin %d", identity.UserID)
	}

	awarded, err := h.services.Badge().AwardBadge(req.Context(), body.UserID, body.BadgeID, reason)
	if err != nil {
		return err
	}

	h.logger.Info("Admin badge award",
		zap.Int64("adminID", identity.UserID),
		zap.Int64("userID", body.UserID),
		zap.Int64("badgeID", body.BadgeID),
		zap.Bool("awarded", awarded))

	return bunrouter.JSON(w, restTypes.AwardBadgeResponse{Success: true, Awarded: awarded})
}
