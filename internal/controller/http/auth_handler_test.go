package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamhub/internal/entity"
	"streamhub/internal/usecase"
	"streamhub/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSessionUseCase is a mock implementation of usecase.SessionUseCase
type MockSessionUseCase struct {
	mock.Mock
}

func (m *MockSessionUseCase) Register(input usecase.RegisterInput) (*entity.User, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockSessionUseCase) Login(username, email, password string) (*entity.User, *usecase.TokenPair, error) {
	args := m.Called(username, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.User), args.Get(1).(*usecase.TokenPair), args.Error(2)
}

func (m *MockSessionUseCase) Refresh(refreshToken string) (*usecase.TokenPair, error) {
	args := m.Called(refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.TokenPair), args.Error(1)
}

func (m *MockSessionUseCase) Logout(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

var _ usecase.SessionUseCase = (*MockSessionUseCase)(nil)

func testConfig() *config.Config {
	return &config.Config{
		Environment:     "development",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 240 * time.Hour,
	}
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func sanitizedUser() *entity.User {
	return &entity.User{
		ID:        "user-123",
		Username:  "alice",
		Email:     "a@x.com",
		FullName:  "Alice",
		AvatarURL: "https://cdn.example.com/avatars/a.png",
	}
}

func cookieNames(cookies []*http.Cookie) []string {
	names := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
	}
	return names
}

func TestLogin_Success(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/login", handler.Login)

	pair := &usecase.TokenPair{AccessToken: "access-abc", RefreshToken: "refresh-xyz"}
	mockUseCase.On("Login", "alice", "", "p1").Return(sanitizedUser(), pair, nil)

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "p1"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	assert.Contains(t, cookieNames(cookies), "accessToken")
	assert.Contains(t, cookieNames(cookies), "refreshToken")
	for _, cookie := range cookies {
		assert.True(t, cookie.HttpOnly)
		assert.False(t, cookie.Secure) // development environment
	}

	var response Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, http.StatusOK, response.StatusCode)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "access-abc", data["access_token"])
	assert.Equal(t, "refresh-xyz", data["refresh_token"])

	mockUseCase.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/login", handler.Login)

	mockUseCase.On("Login", "alice", "", "wrong").Return(nil, nil, usecase.ErrInvalidCredentials)

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "wrong"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// A failed login must not set any cookie
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_MissingPassword(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/login", handler.Login)

	body, _ := json.Marshal(map[string]string{"username": "alice"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_NotFound(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/login", handler.Login)

	mockUseCase.On("Login", "ghost", "", "p1").Return(nil, nil, usecase.ErrNotFound)

	body, _ := json.Marshal(map[string]string{"username": "ghost", "password": "p1"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshToken_FromCookie(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/refresh-token", handler.RefreshToken)

	pair := &usecase.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}
	mockUseCase.On("Refresh", "refresh-old").Return(pair, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-old"})

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, cookieNames(w.Result().Cookies()), "refreshToken")
	mockUseCase.AssertExpectations(t)
}

func TestRefreshToken_FromBody(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/refresh-token", handler.RefreshToken)

	pair := &usecase.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}
	mockUseCase.On("Refresh", "refresh-old").Return(pair, nil)

	body, _ := json.Marshal(map[string]string{"refresh_token": "refresh-old"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/refresh-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshToken_Reused(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/refresh-token", handler.RefreshToken)

	mockUseCase.On("Refresh", "rotated-away").Return(nil, usecase.ErrTokenReused)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "rotated-away"})

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestRefreshToken_Missing(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/refresh-token", handler.RefreshToken)

	mockUseCase.On("Refresh", "").Return(nil, usecase.ErrUnauthorized)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/refresh-token", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_Success(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/register", handler.Register)

	mockUseCase.On("Register", mock.MatchedBy(func(input usecase.RegisterInput) bool {
		return input.Username == "alice" && input.Email == "a@x.com" && input.AvatarPath != ""
	})).Return(sanitizedUser(), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("full_name", "Alice")
	_ = writer.WriteField("email", "a@x.com")
	_ = writer.WriteField("username", "alice")
	_ = writer.WriteField("password", "p1")
	part, _ := writer.CreateFormFile("avatar", "avatar.png")
	_, _ = part.Write([]byte("fake-png-bytes"))
	writer.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	// Credential fields are never serialized
	assert.NotContains(t, w.Body.String(), "password_hash")
	assert.NotContains(t, w.Body.String(), "current_refresh_token")
	mockUseCase.AssertExpectations(t)
}

func TestRegister_MissingAvatar(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/register", handler.Register)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("full_name", "Alice")
	_ = writer.WriteField("email", "a@x.com")
	_ = writer.WriteField("username", "alice")
	_ = writer.WriteField("password", "p1")
	writer.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Register", mock.Anything)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/register", handler.Register)

	mockUseCase.On("Register", mock.AnythingOfType("usecase.RegisterInput")).
		Return(nil, usecase.ErrDuplicateIdentity)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("full_name", "Alice")
	_ = writer.WriteField("email", "a@x.com")
	_ = writer.WriteField("username", "alice")
	_ = writer.WriteField("password", "p1")
	part, _ := writer.CreateFormFile("avatar", "avatar.png")
	_, _ = part.Write([]byte("fake-png-bytes"))
	writer.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogout_Success(t *testing.T) {
	mockUseCase := new(MockSessionUseCase)
	handler := NewAuthHandler(mockUseCase, testConfig())

	router := setupTestRouter()
	router.POST("/logout", func(c *gin.Context) {
		c.Set("user_id", "user-123")
		handler.Logout(c)
	})

	mockUseCase.On("Logout", "user-123").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/logout", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Both cookies must be expired
	for _, cookie := range w.Result().Cookies() {
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.MaxAge < 0)
	}
	assert.Contains(t, cookieNames(w.Result().Cookies()), "accessToken")
	assert.Contains(t, cookieNames(w.Result().Cookies()), "refreshToken")
	mockUseCase.AssertExpectations(t)
}
