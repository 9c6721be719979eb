package store

import (
	"context"
	"errors"
	"fmt"

	"healthdiary/models"

	"gorm.io/gorm"
)

// CreateUser inserts u and fills its ID and CreatedAt. A taken email yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// EmailExists reports whether a user with email is stored.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

// UserByEmail returns the user with email or ErrNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// UserByID returns the user with id or ErrNotFound.
func (s *Store) UserByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// ListUsers returns one page of users, newest first, and the total row count.
// The count and the page are separate reads.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var total int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	err := db.Order("created_at desc").Order("id desc").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// UpdatePasswordHash replaces the stored hash of user id. ErrNotFound when no row matches.
func (s *Store) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("update password hash: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
