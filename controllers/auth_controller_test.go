package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/middleware"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/models"
)

type memStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, auth.ErrUserNotFound
}

func (m *memStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, auth.ErrEmailTaken
		}
	}
	user.ID = bson.NewObjectID()
	cp := *user
	m.users[user.ID.Hex()] = &cp
	return user, nil
}

func (m *memStore) SetRefreshHash(_ context.Context, id string, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.RefreshTokenHash = hash
	}
	return nil
}

type apiFixture struct {
	router *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memStore{users: make(map[string]*models.User)}
	hasher := auth.NewHasher("pepper-secret", bcrypt.MinCost)
	issuer := auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	service := auth.NewService(store, hasher, issuer)

	r := gin.New()
	r.Use(middleware.PopulateUser(issuer))
	r.POST("/auth/signup/:role", SignUp(service))
	r.POST("/auth/signin", SignIn(service))
	r.POST("/auth/logout", Logout(service, issuer))
	r.POST("/auth/refresh", Refresh(service, issuer))
	r.GET("/auth/me", Me())

	return &apiFixture{router: r}
}

func (f *apiFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) signUp(t *testing.T, email string) auth.TokenPair {
	t.Helper()
	w := f.do(http.MethodPost, "/auth/signup/USER", "",
		`{"email":"`+email+`","password":"password1","name":"A"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	return pair
}

func TestSignUpEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	pair := f.signUp(t, "a@x.com")
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	w := f.do(http.MethodPost, "/auth/signup/USER", "",
		`{"email":"a@x.com","password":"password1","name":"A"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignUpEndpoint_BadInput(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/auth/signup/WIZARD", "",
		`{"email":"a@x.com","password":"password1","name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/auth/signup/USER", "",
		`{"email":"not-an-email","password":"password1","name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/auth/signup/USER", "",
		`{"email":"a@x.com","password":"short","name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignInEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.signUp(t, "a@x.com")

	w := f.do(http.MethodPost, "/auth/signin", "", `{"email":"a@x.com","password":"password1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	wrongPassword := f.do(http.MethodPost, "/auth/signin", "", `{"email":"a@x.com","password":"password2"}`)
	unknownEmail := f.do(http.MethodPost, "/auth/signin", "", `{"email":"b@x.com","password":"password1"}`)
	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String(),
		"wrong password and unknown email must be indistinguishable")
}

func TestRefreshEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	pair := f.signUp(t, "a@x.com")

	w := f.do(http.MethodPost, "/auth/refresh", pair.RefreshToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rotated auth.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Replaying the exchanged token fails; the rotation already moved on.
	w = f.do(http.MethodPost, "/auth/refresh", pair.RefreshToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// An access token is the wrong key class for the refresh endpoint.
	w = f.do(http.MethodPost, "/auth/refresh", rotated.AccessToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	pair := f.signUp(t, "a@x.com")

	w := f.do(http.MethodPost, "/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A forged token must not log anyone out.
	forged, err := auth.NewTokenIssuer("wrong", "wrong", time.Hour, time.Hour).
		IssueAccessToken("A", "whoever")
	require.NoError(t, err)
	w = f.do(http.MethodPost, "/auth/logout", forged, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/auth/logout", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())

	// The session is gone.
	w = f.do(http.MethodPost, "/auth/refresh", pair.RefreshToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	pair := f.signUp(t, "a@x.com")

	w := f.do(http.MethodGet, "/auth/me", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var claims auth.Claims
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	assert.Equal(t, "A", claims.Name)
	assert.NotEmpty(t, claims.UserID)

	w = f.do(http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}
