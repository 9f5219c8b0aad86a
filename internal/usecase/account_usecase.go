package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"streamhub/internal/entity"
	"streamhub/internal/repo/persistent"
	"streamhub/pkg/cache"
	"streamhub/pkg/hash"
	"streamhub/pkg/logger"
	"streamhub/pkg/queue"

	"github.com/redis/go-redis/v9"
)

const profileCacheTTL = 5 * time.Minute

type AccountUseCase interface {
	GetUser(userID string) (*entity.User, error)
	ChangePassword(userID, oldPassword, newPassword string) error
	UpdateProfile(userID, fullName, email string) (*entity.User, error)
	UpdateAvatar(userID, localPath string) (*entity.User, error)
	UpdateCoverImage(userID, localPath string) (*entity.User, error)
}

type accountUseCase struct {
	userRepo    persistent.UserRepository
	uploader    MediaUploader
	redisClient *redis.Client
	queueClient *queue.Client
	logger      *logger.Logger
}

func NewAccountUseCase(
	userRepo persistent.UserRepository,
	uploader MediaUploader,
	redisClient *redis.Client,
	queueClient *queue.Client,
	logger *logger.Logger,
) AccountUseCase {
	return &accountUseCase{
		userRepo:    userRepo,
		uploader:    uploader,
		redisClient: redisClient,
		queueClient: queueClient,
		logger:      logger,
	}
}

func (uc *accountUseCase) GetUser(userID string) (*entity.User, error) {
	if uc.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var cached entity.User
		hit, err := cache.GetJSON(ctx, uc.redisClient, profileCacheKey(userID), &cached)
		if err != nil {
			uc.logger.Warn("Profile cache read failed: %v", err)
		}
		if hit {
			return &cached, nil
		}
	}

	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		uc.logger.Error("Failed to look up user: %v", err)
		return nil, fmt.Errorf("%w: user lookup failed", ErrInternal)
	}

	view := sanitize(user)
	uc.cacheProfile(view)
	return view, nil
}

// ChangePassword re-derives the stored hash after verifying the old
// password. It deliberately leaves the current refresh token in place:
// the single-slot model cannot tell this device from others, and revoking
// would log out the session that just proved the old password.
func (uc *accountUseCase) ChangePassword(userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new passwords are required", ErrValidation)
	}

	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrUserNotFound) {
			return ErrNotFound
		}
		uc.logger.Error("Failed to look up user: %v", err)
		return fmt.Errorf("%w: user lookup failed", ErrInternal)
	}

	if !hash.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	passwordHash, err := hash.Hash(newPassword)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return fmt.Errorf("%w: password hashing failed", ErrInternal)
	}

	if _, err := uc.userRepo.UpdateFields(userID, map[string]interface{}{
		"password_hash": passwordHash,
	}); err != nil {
		uc.logger.Error("Failed to persist new password: %v", err)
		return fmt.Errorf("%w: password update failed", ErrInternal)
	}

	uc.invalidateProfile(userID)
	uc.publishEvent(map[string]interface{}{
		"type":    "password.changed",
		"user_id": userID,
	})

	return nil
}

func (uc *accountUseCase) UpdateProfile(userID, fullName, email string) (*entity.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeIdentifier(email)

	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", ErrValidation)
	}

	user, err := uc.userRepo.UpdateFields(userID, map[string]interface{}{
		"full_name": fullName,
		"email":     email,
	})
	if err != nil {
		if errors.Is(err, persistent.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		uc.logger.Error("Failed to update profile: %v", err)
		return nil, fmt.Errorf("%w: profile update failed", ErrInternal)
	}

	uc.invalidateProfile(userID)
	return sanitize(user), nil
}

func (uc *accountUseCase) UpdateAvatar(userID, localPath string) (*entity.User, error) {
	return uc.updateMediaField(userID, localPath, "avatars", "avatar_url")
}

func (uc *accountUseCase) UpdateCoverImage(userID, localPath string) (*entity.User, error) {
	return uc.updateMediaField(userID, localPath, "covers", "cover_image_url")
}

func (uc *accountUseCase) updateMediaField(userID, localPath, prefix, column string) (*entity.User, error) {
	if localPath == "" {
		return nil, fmt.Errorf("%w: media file is required", ErrValidation)
	}

	url, err := uploadMedia(uc.uploader, localPath, prefix)
	if err != nil {
		uc.logger.Error("Failed to upload %s: %v", prefix, err)
		return nil, err
	}

	user, err := uc.userRepo.UpdateFields(userID, map[string]interface{}{column: url})
	if err != nil {
		if errors.Is(err, persistent.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		uc.logger.Error("Failed to persist %s: %v", column, err)
		return nil, fmt.Errorf("%w: media update failed", ErrInternal)
	}

	uc.invalidateProfile(userID)
	return sanitize(user), nil
}

func (uc *accountUseCase) cacheProfile(user *entity.User) {
	if uc.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := cache.SetJSON(ctx, uc.redisClient, profileCacheKey(user.ID), user, profileCacheTTL); err != nil {
		uc.logger.Warn("Profile cache write failed: %v", err)
	}
}

func (uc *accountUseCase) invalidateProfile(userID string) {
	if uc.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := uc.redisClient.Del(ctx, profileCacheKey(userID)).Err(); err != nil {
		uc.logger.Warn("Profile cache invalidation failed: %v", err)
	}
}

func (uc *accountUseCase) publishEvent(event map[string]interface{}) {
	if uc.queueClient == nil {
		return
	}
	go func() {
		if err := uc.queueClient.PublishAccountEvent(event); err != nil {
			uc.logger.Error("Failed to publish account event: %v", err)
		}
	}()
}

func profileCacheKey(userID string) string {
	return "user_profile:" + userID
}
