package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"strive/internal/config"
	"strive/internal/notifications"
	"strive/internal/repository"
	"strive/internal/service"
	"strive/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestServer wires a Server against an in-memory database, skipping the
// metrics and Redis collaborators that handler tests do not need.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		Env:       "test",
		Port:      "0",
		JWTSecret: "test-secret-not-for-production-use",
	}

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	proofRepo := repository.NewProofRepository(db)
	changeRepo := repository.NewChangeRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	emitter := notifications.NewEmitter(notificationRepo, notifications.NewNotifier(nil))
	scope := service.NewScopeService(friendRepo, goalRepo)
	engine := service.NewApprovalEngine(db, goalRepo, scope)

	s := &Server{
		config:           cfg,
		db:               db,
		userRepo:         userRepo,
		friendRepo:       friendRepo,
		goalRepo:         goalRepo,
		milestoneRepo:    milestoneRepo,
		proofRepo:        proofRepo,
		changeRepo:       changeRepo,
		notificationRepo: notificationRepo,
	}
	s.friendService = service.NewFriendService(friendRepo, userRepo, emitter)
	s.goalService = service.NewGoalService(goalRepo, milestoneRepo, friendRepo, userRepo, scope)
	s.milestoneService = service.NewMilestoneService(milestoneRepo, goalRepo)
	s.proofService = service.NewProofService(proofRepo, goalRepo, milestoneRepo, userRepo, scope, engine, emitter)
	s.intervalService = service.NewIntervalService(changeRepo, goalRepo, userRepo, scope, engine, emitter)
	return s, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSignupLoginFlow(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)

	resp := postJSON(t, app, "/api/auth/signup", fiber.Map{
		"username": "goal_getter",
		"email":    "getter@example.com",
		"password": "SecurePass12!@",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "goal_getter", user["username"])
	assert.NotContains(t, user, "password_hash", "the hash must never serialize")

	// Duplicate email conflicts.
	resp = postJSON(t, app, "/api/auth/signup", fiber.Map{
		"username": "goal_getter2",
		"email":    "getter@example.com",
		"password": "SecurePass12!@",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, app, "/api/auth/login", fiber.Map{
		"email":    "getter@example.com",
		"password": "SecurePass12!@",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeJSON(t, resp)
	assert.NotEmpty(t, body["token"])
}

func TestSignupRejectsWeakInput(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing fields", fiber.Map{"username": "x"}},
		{"bad username", fiber.Map{"username": "_x", "email": "a@b.com", "password": "SecurePass12!@"}},
		{"bad email", fiber.Map{"username": "good_name", "email": "nope", "password": "SecurePass12!@"}},
		{"weak password", fiber.Map{"username": "good_name", "email": "a@b.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestLoginInvalidCredentialsAreUniform(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)

	resp := postJSON(t, app, "/api/auth/signup", fiber.Map{
		"username": "login_user",
		"email":    "login@example.com",
		"password": "SecurePass12!@",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	wrongPassword := postJSON(t, app, "/api/auth/login", fiber.Map{
		"email":    "login@example.com",
		"password": "WrongPass12!@",
	})
	unknownEmail := postJSON(t, app, "/api/auth/login", fiber.Map{
		"email":    "nobody@example.com",
		"password": "SecurePass12!@",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)

	// Identical error bodies keep account existence private.
	assert.Equal(t, decodeJSON(t, wrongPassword)["error"], decodeJSON(t, unknownEmail)["error"])
}
