package persistent

import (
	"streamhub/internal/entity"
	"streamhub/internal/model"
)

func ToUserModel(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:                  user.ID,
		Username:            user.Username,
		Email:               user.Email,
		FullName:            user.FullName,
		AvatarURL:           user.AvatarURL,
		CoverImageURL:       user.CoverImageURL,
		PasswordHash:        user.PasswordHash,
		CurrentRefreshToken: user.CurrentRefreshToken,
		WatchHistory:        user.WatchHistory,
		CreatedAt:           user.CreatedAt,
		UpdatedAt:           user.UpdatedAt,
	}
}

func ToUserEntity(userModel *model.UserModel) *entity.User {
	return &entity.User{
		ID:                  userModel.ID,
		Username:            userModel.Username,
		Email:               userModel.Email,
		FullName:            userModel.FullName,
		AvatarURL:           userModel.AvatarURL,
		CoverImageURL:       userModel.CoverImageURL,
		PasswordHash:        userModel.PasswordHash,
		CurrentRefreshToken: userModel.CurrentRefreshToken,
		WatchHistory:        userModel.WatchHistory,
		CreatedAt:           userModel.CreatedAt,
		UpdatedAt:           userModel.UpdatedAt,
	}
}
