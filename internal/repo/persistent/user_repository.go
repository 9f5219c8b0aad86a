package persistent

import (
	"errors"

	"streamhub/internal/entity"
	"streamhub/internal/model"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned by lookups that match no user record.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the credential store contract the usecases depend on.
// RotateRefreshToken must be atomic per record: the new token is written
// only if the stored token still equals the presented one.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsernameOrEmail(username, email string) (*entity.User, error)
	UpdateFields(id string, fields map[string]interface{}) (*entity.User, error)
	SetRefreshToken(id, refreshToken string) error
	RotateRefreshToken(id, oldToken, newToken string) (bool, error)
	ClearRefreshToken(id string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *entity.User) error {
	userModel := ToUserModel(user)
	if err := r.db.Create(userModel).Error; err != nil {
		return err
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) GetByID(id string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.Where("id = ?", id).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByUsernameOrEmail(username, email string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.Where("username = ? OR email = ?", username, email).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) UpdateFields(id string, fields map[string]interface{}) (*entity.User, error) {
	res := r.db.Model(&model.UserModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(id)
}

func (r *userRepository) SetRefreshToken(id, refreshToken string) error {
	res := r.db.Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("current_refresh_token", refreshToken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken swaps the stored refresh token in a single conditional
// update. A false return means the stored token no longer equals oldToken,
// which the caller treats as token reuse.
func (r *userRepository) RotateRefreshToken(id, oldToken, newToken string) (bool, error) {
	res := r.db.Model(&model.UserModel{}).
		Where("id = ? AND current_refresh_token = ?", id, oldToken).
		Update("current_refresh_token", newToken)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) ClearRefreshToken(id string) error {
	// Unconditional, so logout stays idempotent
	return r.db.Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("current_refresh_token", "").Error
}
