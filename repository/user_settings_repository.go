package repository

import (
	"context"
	"fmt"

	"github.com/apexhq/outreach-engine/models"
	"gorm.io/gorm"
)

// UserSettingsRepositoryImpl implements the UserSettingsRepository interface
type UserSettingsRepositoryImpl struct {
	*BaseRepository[models.UserSettings, models.UserSettingsFilter]
}

// NewUserSettingsRepository creates a new user settings repository
func NewUserSettingsRepository(db *gorm.DB) UserSettingsRepository {
	return &UserSettingsRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UserSettings, models.UserSettingsFilter](db),
	}
}

// ByUserID retrieves settings for a user. Returns nil when the user has no
// settings row yet; callers treat that as autopilot disabled.
func (r *UserSettingsRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.UserSettings, error) {
	filter := models.UserSettingsFilter{UserID: &userID}
	settings, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find user settings: %w", err)
	}

	if len(settings) == 0 {
		return nil, nil
	}

	return settings[0], nil
}

// ByFilter retrieves user settings based on filter criteria
func (r *UserSettingsRepositoryImpl) ByFilter(ctx context.Context, filter models.UserSettingsFilter, orderBy string, limit, offset int) ([]*models.UserSettings, error) {
	db := r.getDB(ctx)

	var settings []*models.UserSettings
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user settings by filter: %w", err)
	}

	return settings, nil
}

// Count returns the number of user settings rows matching the filter
func (r *UserSettingsRepositoryImpl) Count(ctx context.Context, filter models.UserSettingsFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var settings models.UserSettings
	query := r.applyFilter(db.Model(&settings), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user settings: %w", err)
	}

	return count, nil
}

// Exists checks if any user settings row matching the filter exists
func (r *UserSettingsRepositoryImpl) Exists(ctx context.Context, filter models.UserSettingsFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *UserSettingsRepositoryImpl) applyFilter(db *gorm.DB, filter models.UserSettingsFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.AutopilotEnabled != nil {
		db = db.Where("autopilot_enabled = ?", *filter.AutopilotEnabled)
	}

	return db
}
