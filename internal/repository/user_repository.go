package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"viewtube/internal/model"
)

// ErrDuplicateKey marks a storage-level uniqueness violation so the
// service layer can report a conflict without importing gorm.
var ErrDuplicateKey = errors.New("duplicate key")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByIDs(ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("query users by ids failed: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

// GetByUsernameOrEmail matches on whichever of the two is non-empty.
func (r *UserRepository) GetByUsernameOrEmail(username, email string) (*model.User, error) {
	query := r.db
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return nil, nil
	}

	var user model.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username or email failed: %w", err)
	}
	return &user, nil
}

// Targeted column writes below deliberately bypass any full-record
// hooks or validation; only the named columns change.

func (r *UserRepository) SetRefreshToken(id uint, token string) error {
	tx := r.db.Model(&model.User{}).Where("id = ?", id).Update("refresh_token", token)
	if tx.Error != nil {
		return fmt.Errorf("set refresh token failed: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("set refresh token: user %d not found", id)
	}
	return nil
}

func (r *UserRepository) ClearRefreshToken(id uint) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("refresh_token", "").Error; err != nil {
		return fmt.Errorf("clear refresh token failed: %w", err)
	}
	return nil
}

// RotateRefreshToken swaps the stored refresh token only when the old
// value is still in place. Returns false when another rotation won.
func (r *UserRepository) RotateRefreshToken(id uint, oldToken, newToken string) (bool, error) {
	tx := r.db.Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, oldToken).
		Update("refresh_token", newToken)
	if tx.Error != nil {
		return false, fmt.Errorf("rotate refresh token failed: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *UserRepository) UpdatePasswordHash(id uint, hash string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password hash failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("update profile: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("update profile failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(id uint, url string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("avatar_url", url).Error; err != nil {
		return fmt.Errorf("update avatar failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateCoverImage(id uint, url string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("cover_image_url", url).Error; err != nil {
		return fmt.Errorf("update cover image failed: %w", err)
	}
	return nil
}
