package http

import (
	"net/http"

	"streamhub/internal/entity"
	"streamhub/internal/usecase"
	"streamhub/pkg/config"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountUseCase usecase.AccountUseCase
	cfg            *config.Config
}

func NewAccountHandler(accountUseCase usecase.AccountUseCase, cfg *config.Config) *AccountHandler {
	return &AccountHandler{
		accountUseCase: accountUseCase,
		cfg:            cfg,
	}
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// CurrentUser godoc
// @Summary      Get the authenticated user
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /current-user [get]
func (h *AccountHandler) CurrentUser(c *gin.Context) {
	user, err := h.accountUseCase.GetUser(c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, user, "Current user fetched successfully")
}

// GetUser godoc
// @Summary      Get a user profile by ID
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  Response
// @Router       /user/{id} [get]
func (h *AccountHandler) GetUser(c *gin.Context) {
	user, err := h.accountUseCase.GetUser(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, user, "User fetched successfully")
}

// ChangePassword godoc
// @Summary      Change the current password
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Old and new passwords"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Failure      401  {object}  Response
// @Router       /change-password [post]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, err.Error())
		return
	}

	if err := h.accountUseCase.ChangePassword(c.GetString("user_id"), req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

// UpdateAccount godoc
// @Summary      Update profile fields
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateAccountRequest true "Full name and email"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Router       /update-account [patch]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, err.Error())
		return
	}

	user, err := h.accountUseCase.UpdateProfile(c.GetString("user_id"), req.FullName, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, user, "Account details updated")
}

// UpdateAvatar godoc
// @Summary      Replace the avatar image
// @Tags         account
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Router       /avatar [patch]
func (h *AccountHandler) UpdateAvatar(c *gin.Context) {
	h.updateMedia(c, "avatar", h.accountUseCase.UpdateAvatar)
}

// UpdateCoverImage godoc
// @Summary      Replace the cover image
// @Tags         account
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        cover_image formData file true "Cover image"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Router       /cover-image [patch]
func (h *AccountHandler) UpdateCoverImage(c *gin.Context) {
	h.updateMedia(c, "cover_image", h.accountUseCase.UpdateCoverImage)
}

func (h *AccountHandler) updateMedia(c *gin.Context, field string, update func(userID, localPath string) (*entity.User, error)) {
	file, err := c.FormFile(field)
	if err != nil {
		respond(c, http.StatusBadRequest, nil, field+" file is required")
		return
	}

	localPath, err := spoolUpload(c, file)
	if err != nil {
		respond(c, http.StatusInternalServerError, nil, "Failed to process uploaded file")
		return
	}

	user, err := update(c.GetString("user_id"), localPath)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, user, field+" updated successfully")
}
