package handler

import (
	"fmt"
	"net/http"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	restTypes "github.com/agorahq/agora/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// VoteHandler handles voting and answer acceptance.
type VoteHandler struct {
	services *database.Service
	logger   *zap.Logger
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(services *database.Service, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		services: services,
		logger:   logger.Named("vote_handler"),
	}
}

// CastVote applies an up, down or remove request to a question or answer.
func (h *VoteHandler) CastVote(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	var body restTypes.VoteRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	kind, err := enum.ParseTargetKind(body.ItemType)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidArgument, err)
	}

	request, err := enum.ParseVoteRequest(body.VoteType)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidArgument, err)
	}

	if body.ItemID <= 0 {
		return fmt.Errorf("%w: itemId is required", types.ErrInvalidArgument)
	}

	result, err := h.services.Vote().CastVote(req.Context(), identity.UserID, body.ItemID, kind, request)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.VoteResponse{
		Success:  true,
		NewScore: result.NewScore,
		UserVote: int(result.Current),
	})
}

// AcceptAnswer marks an answer as accepted. Only the question owner may call it.
func (h *VoteHandler) AcceptAnswer(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	var body restTypes.AcceptAnswerRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	if body.AnswerID <= 0 || body.QuestionID <= 0 {
		return fmt.Errorf("%w: answerId and questionId are required", types.ErrInvalidArgument)
	}

	accepted, err := h.services.Vote().AcceptAnswer(req.Context(), identity.UserID, body.QuestionID, body.AnswerID)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.AcceptAnswerResponse{Success: true, Accepted: accepted})
}
