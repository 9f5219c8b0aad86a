package http

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"streamhub/internal/usecase"
	"streamhub/pkg/config"
	"streamhub/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RefreshTokenCookie = "refreshToken"

type AuthHandler struct {
	sessionUseCase usecase.SessionUseCase
	cfg            *config.Config
}

func NewAuthHandler(sessionUseCase usecase.SessionUseCase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		sessionUseCase: sessionUseCase,
		cfg:            cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Register with full name, email, username, password, a required avatar file and an optional cover image
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        full_name formData string true "Full name"
// @Param        email formData string true "Email"
// @Param        username formData string true "Username"
// @Param        password formData string true "Password"
// @Param        avatar formData file true "Avatar image"
// @Param        cover_image formData file false "Cover image"
// @Success      201  {object}  Response
// @Failure      400  {object}  Response
// @Failure      409  {object}  Response
// @Failure      500  {object}  Response
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	input := usecase.RegisterInput{
		FullName: c.PostForm("full_name"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		respond(c, http.StatusBadRequest, nil, "Avatar file is required")
		return
	}
	input.AvatarPath, err = spoolUpload(c, avatar)
	if err != nil {
		respond(c, http.StatusInternalServerError, nil, "Failed to process avatar file")
		return
	}

	if coverImage, err := c.FormFile("cover_image"); err == nil {
		input.CoverImagePath, err = spoolUpload(c, coverImage)
		if err != nil {
			respond(c, http.StatusInternalServerError, nil, "Failed to process cover image file")
			return
		}
	}

	user, err := h.sessionUseCase.Register(input)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login godoc
// @Summary      Login with username or email
// @Description  Authenticate and receive an access/refresh token pair, also set as cookies
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Failure      401  {object}  Response
// @Failure      404  {object}  Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, err.Error())
		return
	}

	user, pair, err := h.sessionUseCase.Login(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "User logged in successfully")
}

// RefreshToken godoc
// @Summary      Rotate the token pair
// @Description  Exchange a valid refresh token (cookie or body) for a new access/refresh pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token"
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	pair, err := h.sessionUseCase.Refresh(refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "Access token refreshed")
}

// Logout godoc
// @Summary      Logout the current user
// @Description  Clear the stored refresh token and both auth cookies
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.sessionUseCase.Logout(userID); err != nil {
		respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	respond(c, http.StatusOK, gin.H{}, "User logged out")
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, pair *usecase.TokenPair) {
	secure := h.cfg.IsProduction()
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken,
		int(h.cfg.AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken,
		int(h.cfg.RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	secure := h.cfg.IsProduction()
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

// spoolUpload writes the multipart file to a temp path so the uploader can
// consume it from disk.
func spoolUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	dst := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}
