package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/auth"
	"accountsvc/internal/config"
	"accountsvc/internal/handler"
	"accountsvc/internal/model"
	"accountsvc/internal/repository"
	"accountsvc/internal/router"
	"accountsvc/internal/service"
)

const testSecret = "test-secret"

func newServer() *echo.Echo {
	cfg := &config.Config{JWTSecret: testSecret}
	repo := repository.NewMemoryRepository()
	userService := service.NewUserService(repo, auth.NewPasswordHasher(), auth.NewJWTService(testSecret), nil)

	e := echo.New()
	router.Register(e, cfg, handler.NewAuthHandler(userService), handler.NewUserHandler(userService))
	return e
}

func request(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, e *echo.Echo, email, password string, isAdmin bool) model.User {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User","age":30,"is_admin":%t}`, email, password, isAdmin)
	rec := request(e, http.MethodPost, "/users", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func login(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := request(e, http.MethodPost, "/login", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func assertNoPasswordField(t *testing.T, body string) {
	t.Helper()
	assert.NotContains(t, body, `"password"`)
	assert.NotContains(t, body, `"password_hash"`)
	assert.NotContains(t, body, "$2a$")
}

func TestRegister(t *testing.T) {
	e := newServer()

	rec := request(e, http.MethodPost, "/users", "", `{"email":"a@example.com","password":"password123","name":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assertNoPasswordField(t, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "a@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newServer()
	register(t, e, "a@example.com", "password123", false)

	rec := request(e, http.MethodPost, "/users", "", `{"email":"a@example.com","password":"other-password","name":"Clone"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")

	// Store is unchanged: the duplicate never made it in.
	register(t, e, "admin@example.com", "password123", true)
	token := login(t, e, "admin@example.com", "password123")
	rec = request(e, http.MethodGet, "/users", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestRegister_InvalidPayload(t *testing.T) {
	e := newServer()

	rec := request(e, http.MethodPost, "/users", "", `{"email":"not-an-email","password":"short","name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongCredentialsIndistinguishable(t *testing.T) {
	e := newServer()
	register(t, e, "a@example.com", "password123", false)

	wrongPassword := request(e, http.MethodPost, "/login", "", `{"email":"a@example.com","password":"wrong-password"}`)
	unknownEmail := request(e, http.MethodPost, "/login", "", `{"email":"ghost@example.com","password":"password123"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProfile(t *testing.T) {
	e := newServer()
	created := register(t, e, "a@example.com", "password123", false)
	token := login(t, e, "a@example.com", "password123")

	rec := request(e, http.MethodGet, "/users/profile", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assertNoPasswordField(t, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestList_AdminOnly(t *testing.T) {
	e := newServer()
	register(t, e, "user@example.com", "password123", false)
	register(t, e, "admin@example.com", "password123", true)

	userToken := login(t, e, "user@example.com", "password123")
	adminToken := login(t, e, "admin@example.com", "password123")

	rec := request(e, http.MethodGet, "/users", userToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(e, http.MethodGet, "/users", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assertNoPasswordField(t, rec.Body.String())

	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestUpdate_OwnRecord(t *testing.T) {
	e := newServer()
	created := register(t, e, "a@example.com", "password123", false)
	token := login(t, e, "a@example.com", "password123")

	rec := request(e, http.MethodPatch, "/users/"+created.ID.String(), token, `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assertNoPasswordField(t, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Renamed", user.Name)

	// Password was not supplied, so the old one still works.
	login(t, e, "a@example.com", "password123")
}

func TestUpdate_PasswordChange(t *testing.T) {
	e := newServer()
	created := register(t, e, "a@example.com", "password123", false)
	token := login(t, e, "a@example.com", "password123")

	rec := request(e, http.MethodPatch, "/users/"+created.ID.String(), token, `{"password":"new-password"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(e, http.MethodPost, "/login", "", `{"email":"a@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, e, "a@example.com", "new-password")
}

func TestUpdate_AdminFlagIgnored(t *testing.T) {
	e := newServer()
	created := register(t, e, "a@example.com", "password123", false)
	token := login(t, e, "a@example.com", "password123")

	rec := request(e, http.MethodPatch, "/users/"+created.ID.String(), token, `{"name":"Sneaky","is_admin":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.False(t, user.IsAdmin)

	// Still rejected by the admin gate.
	rec = request(e, http.MethodGet, "/users", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdate_ForeignRecord(t *testing.T) {
	e := newServer()
	register(t, e, "a@example.com", "password123", false)
	other := register(t, e, "b@example.com", "password123", false)
	register(t, e, "admin@example.com", "password123", true)

	token := login(t, e, "a@example.com", "password123")
	adminToken := login(t, e, "admin@example.com", "password123")

	rec := request(e, http.MethodPatch, "/users/"+other.ID.String(), token, `{"name":"Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(e, http.MethodPatch, "/users/"+other.ID.String(), adminToken, `{"name":"Moderated"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDelete(t *testing.T) {
	e := newServer()
	created := register(t, e, "a@example.com", "password123", false)
	register(t, e, "admin@example.com", "password123", true)

	token := login(t, e, "a@example.com", "password123")
	adminToken := login(t, e, "admin@example.com", "password123")

	rec := request(e, http.MethodDelete, "/users/"+created.ID.String(), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// The token still verifies (no revocation) but the record is gone.
	rec = request(e, http.MethodGet, "/users/profile", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again reports not found.
	rec = request(e, http.MethodDelete, "/users/"+created.ID.String(), adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var users []model.User
	rec = request(e, http.MethodGet, "/users", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 1)
}

func TestDelete_ForeignRecordForbidden(t *testing.T) {
	e := newServer()
	register(t, e, "a@example.com", "password123", false)
	other := register(t, e, "b@example.com", "password123", false)

	token := login(t, e, "a@example.com", "password123")

	rec := request(e, http.MethodDelete, "/users/"+other.ID.String(), token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
