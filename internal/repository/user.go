// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"amplify/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user on first sign-in or refreshes the mutable profile
// fields on subsequent ones. Email is the natural key.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	var existing models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(user.Email)).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(user).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"auth_id":    user.AuthID,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
	}
	if user.AccountID != "" {
		updates["account_id"] = user.AccountID
	}
	if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return err
	}
	*user = existing
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
