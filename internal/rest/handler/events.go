package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

const maxWatchedQuestions = 50

// EventsHandler streams realtime events over server-sent events.
type EventsHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(hub *realtime.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub:    hub,
		logger: logger.Named("events_handler"),
	}
}

// Stream subscribes the caller to their own channels and to the questions
// listed in the questions query parameter, then streams until the client
// disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	questionIDs, err := parseIDList(req.URL.Query().Get("questions"))
	if err != nil {
		return err
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	client := h.hub.NewClient(identity.UserID)
	defer h.hub.Close(client)

	h.hub.Subscribe(client, realtime.UserChannel(identity.UserID))
	h.hub.Subscribe(client, realtime.BadgeChannel(identity.UserID))
	for _, id := range questionIDs {
		h.hub.Subscribe(client, realtime.QuestionChannel(id))
	}

	h.logger.Debug("Event stream opened",
		zap.Int64("userID", identity.UserID),
		zap.Int("questions", len(questionIDs)))

	h.hub.Serve(w, req.Request, client)
	return nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxWatchedQuestions {
		return nil, fmt.Errorf("%w: at most %d questions", types.ErrInvalidArgument, maxWatchedQuestions)
	}

	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid question id %q", types.ErrInvalidArgument, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
