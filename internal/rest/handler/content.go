package handler

import (
	"fmt"
	"net/http"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/rest/convert"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	restTypes "github.com/agorahq/agora/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// ContentHandler handles questions, answers, comments and favorites.
type ContentHandler struct {
	services *database.Service
	logger   *zap.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(services *database.Service, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		services: services,
		logger:   logger.Named("content_handler"),
	}
}

// CreateQuestion posts a new question.
func (h *ContentHandler) CreateQuestion(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	var body restTypes.QuestionRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	question, err := h.services.Content().CreateQuestion(req.Context(), identity.UserID, body.Title, body.Body)
	if err != nil {
		return err
	}

	return created(w, restTypes.QuestionResponse{Success: true, Question: convert.Question(question)})
}

// EditQuestion replaces a question's title and body.
func (h *ContentHandler) EditQuestion(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	questionID, err := pathID(req, "id")
	if err != nil {
		return err
	}

	var body restTypes.QuestionRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	if err := h.services.Content().EditQuestion(req.Context(), identity.UserID, questionID, body.Title, body.Body); err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.SuccessResponse{Success: true})
}

// PostAnswer answers a question.
func (h *ContentHandler) PostAnswer(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	questionID, err := pathID(req, "id")
	if err != nil {
		return err
	}

	var body restTypes.AnswerRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	answer, err := h.services.Content().PostAnswer(req.Context(), identity.UserID, questionID, body.Body)
	if err != nil {
		return err
	}

	return created(w, restTypes.AnswerResponse{Success: true, Answer: convert.Answer(answer)})
}

// EditAnswer replaces an answer's body.
func (h *ContentHandler) EditAnswer(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	answerID, err := pathID(req, "id")
	if err != nil {
		return err
	}

	var body restTypes.AnswerRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	if err := h.services.Content().EditAnswer(req.Context(), identity.UserID, answerID, body.Body); err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.SuccessResponse{Success: true})
}

// PostComment comments on a question or answer, or replies to a comment.
func (h *ContentHandler) PostComment(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	var body restTypes.CommentRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	kind, err := enum.ParseTargetKind(body.TargetType)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidArgument, err)
	}

	comment, err := h.services.Content().PostComment(
		req.Context(), identity.UserID, kind, body.TargetID, body.ParentID, body.Body,
	)
	if err != nil {
		return err
	}

	return created(w, restTypes.CommentResponse{Success: true, Comment: convert.Comment(comment)})
}

// FavoriteQuestion adds a question to the caller's favorites.
func (h *ContentHandler) FavoriteQuestion(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	questionID, err := pathID(req, "id")
	if err != nil {
		return err
	}

	isNew, err := h.services.Content().FavoriteQuestion(req.Context(), identity.UserID, questionID)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.FavoriteResponse{Success: true, Created: isNew})
}
