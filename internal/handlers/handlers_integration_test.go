package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"notes/internal/database"
	"notes/internal/handlers"
	"notes/internal/middleware"
	"notes/internal/models"
	"notes/internal/repositories"
	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

type testEnv struct {
	app      *fiber.App
	userRepo *repositories.GORMUserRepository
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T, enforceOwnership bool) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenDialector(sqlite.Open(dsn))
	require.NoError(t, err, "failed to connect to in-memory database")
	t.Cleanup(func() { database.Close(db) })

	tokens, err := services.NewTokenService("test_jwt_secret", 0)
	require.NoError(t, err)

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	noteRepo := repositories.NewGORMNoteRepository(db)

	// Initialize Services, without a broker
	authService := services.NewAuthService(userRepo, tokens, nil, bcrypt.MinCost)
	noteService := services.NewNoteService(noteRepo, nil, enforceOwnership)
	userService := services.NewUserService(userRepo, nil)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api")
	authRequired := middleware.AuthRequired(tokens)
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewNoteHandler(noteService).RegisterRoutes(api, authRequired)
	handlers.NewAdminHandler(userService).RegisterRoutes(api, authRequired, middleware.AdminRequired(userService))

	return &testEnv{app: app, userRepo: userRepo}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// do sends a request with an optional JSON body and bearer token and decodes
// the JSON response.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// signup registers an account and returns its token and id.
func (e *testEnv) signup(t *testing.T, username, email string) (string, string) {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func (e *testEnv) promote(t *testing.T, id string) {
	t.Helper()
	user, err := e.userRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	user.Role = models.RoleAdmin
	require.NoError(t, e.userRepo.Update(context.Background(), user))
}

func TestAuthSignupAndLogin(t *testing.T) {
	env := setupApp(t, false)

	status, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "A@Ex.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User account created successfully", body["message"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@ex.com", user["email"])
	assert.Equal(t, "USER", user["role"])
	assert.Equal(t, "ACTIVE", user["status"])
	assert.NotContains(t, user, "password")

	// Duplicate registration, email compared case-insensitively
	status, body = env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "alice2",
		"email":    "a@EX.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "User with this email already exists", body["message"])

	status, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "a@ex.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User Login Successful", body["message"])
	assert.NotEmpty(t, body["token"])

	status, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "a@ex.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestAuthValidation(t *testing.T) {
	env := setupApp(t, false)

	status, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "al",
		"email":    "al@ex.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username must be at least 3 characters long", body["message"])

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNoteEndpoints(t *testing.T) {
	env := setupApp(t, false)
	token, _ := env.signup(t, "alice", "a@ex.com")

	status, body := env.do(t, http.MethodPost, "/api/notes/add", token, map[string]string{"title": "first", "content": "hello"})
	require.Equal(t, http.StatusCreated, status)
	created := body["data"].(map[string]any)
	noteID := created["id"].(string)
	assert.Equal(t, "hello", created["content"])

	status, body = env.do(t, http.MethodPost, "/api/notes/add", token, map[string]string{"title": "no content"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Content is required", body["message"])

	status, _ = env.do(t, http.MethodPost, "/api/notes/add", token, map[string]string{"content": "second"})
	require.Equal(t, http.StatusCreated, status)

	// --- Listing ---
	status, body = env.do(t, http.MethodGet, "/api/notes/getAll?page=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["totalUserNotes"])
	assert.EqualValues(t, 2, pagination["totalPages"])

	status, body = env.do(t, http.MethodGet, "/api/notes/getAll?search=HELLO", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 10, body["pagination"].(map[string]any)["limit"])

	status, body = env.do(t, http.MethodGet, "/api/notes/getAll?limit=101", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Limit must be between 1 and 100", body["message"])

	// --- Single note ---
	status, body = env.do(t, http.MethodGet, "/api/notes/get/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid id format", body["message"])

	status, body = env.do(t, http.MethodPut, "/api/notes/update/"+noteID, token, map[string]string{"title": "renamed", "content": ""})
	require.Equal(t, http.StatusOK, status)
	updated := body["data"].(map[string]any)
	assert.Equal(t, "renamed", updated["title"])
	assert.Equal(t, "hello", updated["content"])

	status, body = env.do(t, http.MethodGet, "/api/users/user-stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["data"].(map[string]any)
	assert.EqualValues(t, 2, stats["totalUserNotes"])
	assert.NotNil(t, stats["latestActivity"])

	status, _ = env.do(t, http.MethodDelete, "/api/notes/delete/"+noteID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/api/notes/get/"+noteID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Note not found", body["message"])
}

func TestNoteEndpointsWithoutAuth(t *testing.T) {
	env := setupApp(t, false)

	status, body := env.do(t, http.MethodGet, "/api/notes/getAll", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized, No token provided", body["message"])

	status, body = env.do(t, http.MethodPost, "/api/notes/add", "invalid.token.string", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid Token", body["message"])

	status, _ = env.do(t, http.MethodGet, "/api/users/user-stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNoteOwnership(t *testing.T) {
	for _, enforce := range []bool{false, true} {
		t.Run(fmt.Sprintf("enforce=%v", enforce), func(t *testing.T) {
			env := setupApp(t, enforce)
			alice, _ := env.signup(t, "alice", "a@ex.com")
			bob, _ := env.signup(t, "bob", "b@ex.com")

			_, body := env.do(t, http.MethodPost, "/api/notes/add", alice, map[string]string{"content": "private"})
			noteID := body["data"].(map[string]any)["id"].(string)

			// Listing is always scoped to the caller.
			_, body = env.do(t, http.MethodGet, "/api/notes/getAll", bob, nil)
			assert.Empty(t, body["data"])

			status, _ := env.do(t, http.MethodGet, "/api/notes/get/"+noteID, bob, nil)
			if enforce {
				assert.Equal(t, http.StatusNotFound, status)
			} else {
				assert.Equal(t, http.StatusOK, status)
			}
		})
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := setupApp(t, false)
	adminToken, adminID := env.signup(t, "alice", "a@ex.com")
	_, bobID := env.signup(t, "bob", "b@ex.com")

	status, body := env.do(t, http.MethodGet, "/api/admin/users/getAll", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied. Admin privileges required", body["message"])

	env.promote(t, adminID)

	status, body = env.do(t, http.MethodGet, "/api/admin/users/getAll?search=BOB", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["totalUsers"])
	assert.EqualValues(t, 1, pagination["totalMatched"])
	assert.EqualValues(t, 1, pagination["totalPages"])

	status, body = env.do(t, http.MethodGet, "/api/admin/users/get/"+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])

	status, body = env.do(t, http.MethodPut, "/api/admin/users/update/"+bobID, adminToken, map[string]string{"role": "ROOT"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid role", body["message"])

	status, body = env.do(t, http.MethodPut, "/api/admin/users/update/"+bobID, adminToken, map[string]string{"status": "INACTIVE"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User updated successfully", body["message"])
	assert.Equal(t, "bob", body["data"].(map[string]any)["username"])

	status, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "b@ex.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Account is inactive. Please contact admin to activate your account", body["message"])

	status, _ = env.do(t, http.MethodDelete, "/api/admin/users/delete/"+bobID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, "/api/admin/users/delete/"+bobID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// A token outlives its account; the guard then reports the caller missing.
	status, _ = env.do(t, http.MethodDelete, "/api/admin/users/delete/"+adminID, adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = env.do(t, http.MethodGet, "/api/admin/users/getAll", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])
}
