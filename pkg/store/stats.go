package store

import (
	"context"
	"fmt"
	"time"

	"healthdiary/models"

	"gorm.io/gorm"
)

// TokenStats counts refresh tokens by state at a point in time.
type TokenStats struct {
	Active  int64
	Revoked int64
	Expired int64
}

// UsersByRole counts users per role. Roles with no users are absent.
func (s *Store) UsersByRole(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role models.Role
		N    int64
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).Select("role, count(*) as n").Group("role").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	out := make(map[models.Role]int64, len(rows))
	for _, r := range rows {
		out[r.Role] = r.N
	}
	return out, nil
}

// RefreshTokenStats counts tokens by state at now. userID 0 means every user.
// A revoked token counts as revoked even after its expiry.
func (s *Store) RefreshTokenStats(ctx context.Context, now time.Time, userID uint) (TokenStats, error) {
	var st TokenStats
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.RefreshToken{})
		if userID != 0 {
			q = q.Where("user_id = ?", userID)
		}
		return q
	}
	if err := base().Where("revoked = ?", true).Count(&st.Revoked).Error; err != nil {
		return TokenStats{}, fmt.Errorf("count revoked tokens: %w", err)
	}
	if err := base().Where("revoked = ? AND expires_at < ?", false, now).Count(&st.Expired).Error; err != nil {
		return TokenStats{}, fmt.Errorf("count expired tokens: %w", err)
	}
	if err := base().Where("revoked = ? AND expires_at >= ?", false, now).Count(&st.Active).Error; err != nil {
		return TokenStats{}, fmt.Errorf("count active tokens: %w", err)
	}
	return st, nil
}

// UserRefreshTokens lists the stored tokens of userID, newest first.
func (s *Store) UserRefreshTokens(ctx context.Context, userID uint) ([]models.RefreshToken, error) {
	var out []models.RefreshToken
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list user refresh tokens: %w", err)
	}
	return out, nil
}
