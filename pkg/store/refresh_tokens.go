package store

import (
	"context"
	"fmt"
	"time"

	"healthdiary/models"

	"gorm.io/gorm/clause"
)

// CreateRefreshToken inserts rt.
func (s *Store) CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(rt).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// RefreshToken returns the row keyed by tokenHash or ErrNotFound.
func (s *Store) RefreshToken(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&rt).Error; err != nil {
		return models.RefreshToken{}, notFound(err)
	}
	return rt, nil
}

// RevokeRefreshToken flags one token as revoked and reports how many rows changed.
// An unknown hash changes nothing and is not an error.
func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", tokenHash, false).
		Update("revoked", true)
	if res.Error != nil {
		return 0, fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RevokeUserRefreshTokens flags every still-active token of userID as revoked.
func (s *Store) RevokeUserRefreshTokens(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	if res.Error != nil {
		return 0, fmt.Errorf("revoke user refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountExpiredRefreshTokens counts rows whose expiry is strictly before t.
func (s *Store) CountExpiredRefreshTokens(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("expires_at < ?", t).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count expired refresh tokens: %w", err)
	}
	return n, nil
}

// DeleteExpiredRefreshTokens removes rows whose expiry is strictly before t.
func (s *Store) DeleteExpiredRefreshTokens(ctx context.Context, t time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", t).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
