package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apexhq/outreach-engine/models"
	"gorm.io/gorm"
)

// LinkedAccountRepositoryImpl implements the LinkedAccountRepository interface
type LinkedAccountRepositoryImpl struct {
	*BaseRepository[models.LinkedAccount, models.LinkedAccountFilter]
}

// NewLinkedAccountRepository creates a new linked account repository
func NewLinkedAccountRepository(db *gorm.DB) LinkedAccountRepository {
	return &LinkedAccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LinkedAccount, models.LinkedAccountFilter](db),
	}
}

// ListActiveByUser retrieves the user's active messaging accounts
func (r *LinkedAccountRepositoryImpl) ListActiveByUser(ctx context.Context, userID uint) ([]*models.LinkedAccount, error) {
	status := models.LinkedAccountStatusActive
	filter := models.LinkedAccountFilter{
		UserID: &userID,
		Status: &status,
	}
	return r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
}

// UpdateStatus updates only the status of a linked account
func (r *LinkedAccountRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.LinkedAccountStatus) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	now := time.Now().UTC()
	err = db.Model(&models.LinkedAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"last_checked_at": now,
			"updated_at":      now,
		}).Error

	if err != nil {
		return fmt.Errorf("failed to update linked account status: %w", err)
	}

	return nil
}

// ByFilter retrieves linked accounts based on filter criteria
func (r *LinkedAccountRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkedAccountFilter, orderBy string, limit, offset int) ([]*models.LinkedAccount, error) {
	db := r.getDB(ctx)

	var accounts []*models.LinkedAccount
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

	err := query.Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find linked accounts by filter: %w", err)
	}

	return accounts, nil
}

// Count returns the number of linked accounts matching the filter
func (r *LinkedAccountRepositoryImpl) Count(ctx context.Context, filter models.LinkedAccountFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var account models.LinkedAccount
	query := r.applyFilter(db.Model(&account), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count linked accounts: %w", err)
	}

	return count, nil
}

// Exists checks if any linked account matching the filter exists
func (r *LinkedAccountRepositoryImpl) Exists(ctx context.Context, filter models.LinkedAccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *LinkedAccountRepositoryImpl) applyFilter(db *gorm.DB, filter models.LinkedAccountFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProviderAccountID != nil {
		db = db.Where("provider_account_id = ?", *filter.ProviderAccountID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	return db
}
