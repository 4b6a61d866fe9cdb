package rest

import (
	"net/http"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/agorahq/agora/internal/rest/handler"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	"github.com/agorahq/agora/internal/setup/config"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// EventsPath is the server-sent events endpoint.
const EventsPath = "/v1/events"

// Server implements the REST API service.
type Server struct {
	voteHandler         *handler.VoteHandler
	contentHandler      *handler.ContentHandler
	badgeHandler        *handler.BadgeHandler
	notificationHandler *handler.NotificationHandler
	eventsHandler       *handler.EventsHandler
}

// NewServer creates a new REST API server. Metrics registered on gatherer
// are exposed at /metrics.
func NewServer(
	services *database.Service,
	hub *realtime.Hub,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
	config *config.APIConfig,
) (http.Handler, error) {
	server := &Server{
		voteHandler:         handler.NewVoteHandler(services, logger),
		contentHandler:      handler.NewContentHandler(services, logger),
		badgeHandler:        handler.NewBadgeHandler(services, config.Badges.ProgressCount, logger),
		notificationHandler: handler.NewNotificationHandler(services, logger),
		eventsHandler:       handler.NewEventsHandler(hub, logger),
	}

	authMiddleware := auth.New(&config.Auth, logger)

	router := bunrouter.New()

	router.Use(
		errorMiddleware(logger.Named("rest")),
		authMiddleware.AsRESTMiddleware,
	).WithGroup("/v1", func(g *bunrouter.Group) {
		g.POST("/votes", server.voteHandler.CastVote)
		g.POST("/answers/accept", server.voteHandler.AcceptAnswer)

		g.POST("/questions", server.contentHandler.CreateQuestion)
		g.PUT("/questions/:id", server.contentHandler.EditQuestion)
		g.POST("/questions/:id/answers", server.contentHandler.PostAnswer)
		g.POST("/questions/:id/favorite", server.contentHandler.FavoriteQuestion)
		g.PUT("/answers/:id", server.contentHandler.EditAnswer)
		g.POST("/comments", server.contentHandler.PostComment)

		g.GET("/badges/progress", server.badgeHandler.GetProgress)
		g.POST("/badges/recalculate", server.badgeHandler.Recalculate)
		g.POST("/admin/badges/award", server.badgeHandler.Award)

		g.GET("/notifications", server.notificationHandler.List)
		g.POST("/notifications/read-all", server.notificationHandler.MarkAllRead)
		g.POST("/notifications/:id/read", server.notificationHandler.MarkRead)
		g.GET("/users/:id/reputation", server.notificationHandler.Reputation)

		g.GET("/events", server.eventsHandler.Stream)
	})

	router.GET("/metrics", bunrouter.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Event streams bypass compression so every event is flushed as written.
	compressed := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == EventsPath {
			router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	}), nil
}
