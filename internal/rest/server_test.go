package rest_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/database/dbtest"
	"github.com/agorahq/agora/internal/database/service"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/agorahq/agora/internal/rest"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	"github.com/agorahq/agora/internal/setup/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	repo    *database.Repository
	hub     *realtime.Hub
	auth    *auth.Middleware
}

func setupTest(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.Open(t)
	logger := zap.NewNop()
	repo := database.NewRepository(db, logger)
	services := database.NewService(db, repo, service.NopNotifier{}, time.Minute, logger)
	hub := realtime.NewHub(logger)

	cfg := &config.APIConfig{
		Auth:   config.Auth{JWTSecret: "test-secret", Issuer: "agora"},
		Badges: config.Badges{ProgressCount: 3},
	}

	handler, err := rest.NewServer(services, hub, prometheus.NewRegistry(), logger, cfg)
	require.NoError(t, err)

	return &testServer{
		handler: handler,
		repo:    repo,
		hub:     hub,
		auth:    auth.New(&cfg.Auth, logger),
	}
}

func (s *testServer) user(t *testing.T, name string, admin bool) (*types.User, string) {
	t.Helper()

	u := &types.User{Name: name, IsAdmin: admin}
	require.NoError(t, s.repo.User().CreateUser(t.Context(), u))

	token, err := s.auth.Issue(auth.Identity{UserID: u.ID, Admin: admin}, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestVoteEndpoint(t *testing.T) {
	t.Parallel()

	s := setupTest(t)
	_, askerToken := s.user(t, "asker", false)
	_, voterToken := s.user(t, "voter", false)

	code, body := s.do(t, http.MethodPost, "/v1/questions", askerToken,
		map[string]string{"title": "Why?", "body": "Because."})
	require.Equal(t, http.StatusCreated, code)
	questionID := int64(body["question"].(map[string]any)["id"].(float64))

	vote := map[string]any{"itemId": questionID, "itemType": "question", "voteType": "up"}

	code, body = s.do(t, http.MethodPost, "/v1/votes", "", vote)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])

	code, body = s.do(t, http.MethodPost, "/v1/votes", voterToken, vote)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["newScore"])
	assert.EqualValues(t, 1, body["userVote"])

	vote["voteType"] = "remove"
	code, body = s.do(t, http.MethodPost, "/v1/votes", voterToken, vote)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["newScore"])
	assert.EqualValues(t, 0, body["userVote"])

	code, _ = s.do(t, http.MethodPost, "/v1/votes", voterToken,
		map[string]any{"itemId": questionID, "itemType": "post", "voteType": "up"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/v1/votes", voterToken,
		map[string]any{"itemId": 9999, "itemType": "answer", "voteType": "down"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/v1/votes", "not-a-token", vote)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAcceptAnswerEndpoint(t *testing.T) {
	t.Parallel()

	s := setupTest(t)
	_, askerToken := s.user(t, "asker", false)
	_, answererToken := s.user(t, "answerer", false)

	_, body := s.do(t, http.MethodPost, "/v1/questions", askerToken,
		map[string]string{"title": "Why?", "body": "Because."})
	questionID := int64(body["question"].(map[string]any)["id"].(float64))

	answerPath := fmt.Sprintf("/v1/questions/%d/answers", questionID)
	_, body = s.do(t, http.MethodPost, answerPath, answererToken, map[string]string{"body": "This."})
	firstID := int64(body["answer"].(map[string]any)["id"].(float64))
	_, body = s.do(t, http.MethodPost, answerPath, answererToken, map[string]string{"body": "That."})
	secondID := int64(body["answer"].(map[string]any)["id"].(float64))

	accept := map[string]any{"questionId": questionID, "answerId": firstID}

	code, _ := s.do(t, http.MethodPost, "/v1/answers/accept", answererToken, accept)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPost, "/v1/answers/accept", askerToken, accept)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["accepted"])

	accept["answerId"] = secondID
	code, _ = s.do(t, http.MethodPost, "/v1/answers/accept", askerToken, accept)
	assert.Equal(t, http.StatusConflict, code)
}

func TestBadgeAndNotificationEndpoints(t *testing.T) {
	t.Parallel()

	s := setupTest(t)
	user, userToken := s.user(t, "user", false)
	_, adminToken := s.user(t, "admin", true)

	code, body := s.do(t, http.MethodGet, "/v1/badges/progress?count=2", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["progress"], 2)

	award := map[string]any{"userId": user.ID, "badgeId": 1}
	code, _ = s.do(t, http.MethodPost, "/v1/admin/badges/award", userToken, award)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPost, "/v1/admin/badges/award", adminToken, award)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["awarded"])

	code, body = s.do(t, http.MethodGet, fmt.Sprintf("/v1/users/%d/reputation", user.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["history"], 1)

	code, _ = s.do(t, http.MethodGet, "/v1/users/9999/reputation", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodGet, "/v1/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["unread"])

	code, _ = s.do(t, http.MethodPost, "/v1/notifications/9999/read", userToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodPost, "/v1/notifications/read-all", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["updated"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := setupTest(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventStream(t *testing.T) {
	t.Parallel()

	s := setupTest(t)
	user, token := s.user(t, "viewer", false)

	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?questions=3,4", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return s.hub.Subscribers(realtime.QuestionChannel(4)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.hub.Subscribers(realtime.UserChannel(user.ID)))

	msg := realtime.NewMessage(realtime.QuestionChannel(4), realtime.EventQuestionUpdated, map[string]int{"score": 2})
	require.NoError(t, s.hub.Publish(ctx, msg))

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "event: ") {
			assert.Equal(t, "event: "+realtime.EventQuestionUpdated, scanner.Text())
			return
		}
	}
	t.Fatalf("stream ended without an event: %v", scanner.Err())
}
