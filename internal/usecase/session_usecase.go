package usecase

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"streamhub/internal/entity"
	"streamhub/internal/repo/persistent"
	"streamhub/pkg/hash"
	"streamhub/pkg/logger"
	"streamhub/pkg/queue"
	"streamhub/pkg/token"

	"github.com/google/uuid"
)

// MediaUploader stores a local file under key and returns a durable URL.
type MediaUploader interface {
	Upload(localPath, key string) (string, error)
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type SessionUseCase interface {
	Register(input RegisterInput) (*entity.User, error)
	Login(username, email, password string) (*entity.User, *TokenPair, error)
	Refresh(refreshToken string) (*TokenPair, error)
	Logout(userID string) error
}

type sessionUseCase struct {
	userRepo    persistent.UserRepository
	codec       *token.Codec
	uploader    MediaUploader
	queueClient *queue.Client
	logger      *logger.Logger
}

func NewSessionUseCase(
	userRepo persistent.UserRepository,
	codec *token.Codec,
	uploader MediaUploader,
	queueClient *queue.Client,
	logger *logger.Logger,
) SessionUseCase {
	return &sessionUseCase{
		userRepo:    userRepo,
		codec:       codec,
		uploader:    uploader,
		queueClient: queueClient,
		logger:      logger,
	}
}

func (uc *sessionUseCase) Register(input RegisterInput) (*entity.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := normalizeIdentifier(input.Email)
	username := normalizeIdentifier(input.Username)

	if fullName == "" || email == "" || username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: full name, email, username and password are required", ErrValidation)
	}
	if input.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	_, err := uc.userRepo.GetByUsernameOrEmail(username, email)
	if err == nil {
		return nil, ErrDuplicateIdentity
	}
	if !errors.Is(err, persistent.ErrUserNotFound) {
		uc.logger.Error("Failed to check for existing user: %v", err)
		return nil, fmt.Errorf("%w: user lookup failed", ErrInternal)
	}

	avatarURL, err := uploadMedia(uc.uploader, input.AvatarPath, "avatars")
	if err != nil {
		uc.logger.Error("Failed to upload avatar: %v", err)
		return nil, err
	}

	var coverImageURL string
	if input.CoverImagePath != "" {
		coverImageURL, err = uploadMedia(uc.uploader, input.CoverImagePath, "covers")
		if err != nil {
			uc.logger.Error("Failed to upload cover image: %v", err)
			return nil, err
		}
	}

	passwordHash, err := hash.Hash(input.Password)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, fmt.Errorf("%w: password hashing failed", ErrInternal)
	}

	user := &entity.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		PasswordHash:  passwordHash,
		WatchHistory:  []string{},
	}

	if err := uc.userRepo.Create(user); err != nil {
		uc.logger.Error("Failed to create user: %v", err)
		return nil, fmt.Errorf("%w: user creation failed", ErrInternal)
	}

	uc.publishEvent(map[string]interface{}{
		"type":    "user.registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return sanitize(user), nil
}

func (uc *sessionUseCase) Login(username, email, password string) (*entity.User, *TokenPair, error) {
	username = normalizeIdentifier(username)
	email = normalizeIdentifier(email)

	if username == "" && email == "" {
		return nil, nil, fmt.Errorf("%w: username or email is required", ErrValidation)
	}

	user, err := uc.userRepo.GetByUsernameOrEmail(username, email)
	if err != nil {
		if errors.Is(err, persistent.ErrUserNotFound) {
			return nil, nil, ErrNotFound
		}
		uc.logger.Error("Failed to look up user: %v", err)
		return nil, nil, fmt.Errorf("%w: user lookup failed", ErrInternal)
	}

	if !hash.Verify(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := uc.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	// Overwrites any previous refresh token, logging out the session that
	// held it. Signing happens before persistence; a crash in between
	// leaves a pair that the next Refresh will reject.
	if err := uc.userRepo.SetRefreshToken(user.ID, pair.RefreshToken); err != nil {
		uc.logger.Error("Failed to persist refresh token: %v", err)
		return nil, nil, fmt.Errorf("%w: refresh token persistence failed", ErrInternal)
	}

	return sanitize(user), pair, nil
}

func (uc *sessionUseCase) Refresh(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := uc.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := uc.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, persistent.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		uc.logger.Error("Failed to look up user: %v", err)
		return nil, fmt.Errorf("%w: user lookup failed", ErrInternal)
	}

	// The presented token must equal the stored slot byte-for-byte. A
	// mismatch means it was already rotated away or never honored.
	if user.CurrentRefreshToken != refreshToken {
		return nil, ErrTokenReused
	}

	pair, err := uc.issuePair(user)
	if err != nil {
		return nil, err
	}

	// Conditional swap: if a concurrent refresh already rotated the slot,
	// the update matches zero rows and this call loses as a reuse.
	rotated, err := uc.userRepo.RotateRefreshToken(user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		uc.logger.Error("Failed to rotate refresh token: %v", err)
		return nil, fmt.Errorf("%w: refresh token rotation failed", ErrInternal)
	}
	if !rotated {
		return nil, ErrTokenReused
	}

	return pair, nil
}

func (uc *sessionUseCase) Logout(userID string) error {
	if err := uc.userRepo.ClearRefreshToken(userID); err != nil {
		uc.logger.Error("Failed to clear refresh token: %v", err)
		return fmt.Errorf("%w: refresh token clear failed", ErrInternal)
	}
	return nil
}

// issuePair mints both tokens or neither.
func (uc *sessionUseCase) issuePair(user *entity.User) (*TokenPair, error) {
	accessToken, err := uc.codec.SignAccess(user.ID, user.Email, user.Username)
	if err != nil {
		uc.logger.Error("Failed to sign access token: %v", err)
		return nil, fmt.Errorf("%w: access token signing failed", ErrInternal)
	}

	refreshToken, err := uc.codec.SignRefresh(user.ID)
	if err != nil {
		uc.logger.Error("Failed to sign refresh token: %v", err)
		return nil, fmt.Errorf("%w: refresh token signing failed", ErrInternal)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// uploadMedia delegates to the media uploader and normalizes its failures
// into ErrUpload. Callers validate the path before reaching this point.
func uploadMedia(uploader MediaUploader, localPath, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), filepath.Ext(localPath))
	url, err := uploader.Upload(localPath, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if url == "" {
		return "", ErrUpload
	}
	return url, nil
}

func (uc *sessionUseCase) publishEvent(event map[string]interface{}) {
	if uc.queueClient == nil {
		return
	}
	go func() {
		if err := uc.queueClient.PublishAccountEvent(event); err != nil {
			uc.logger.Error("Failed to publish account event: %v", err)
		}
	}()
}

// normalizeIdentifier applies the identity-key normalization used at both
// registration and lookup so the two always agree.
func normalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sanitize strips credential state before a user record leaves the core.
func sanitize(user *entity.User) *entity.User {
	view := *user
	view.PasswordHash = ""
	view.CurrentRefreshToken = ""
	return &view
}
