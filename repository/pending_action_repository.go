package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/utils"
	"gorm.io/gorm"
)

// PendingActionRepositoryImpl implements the PendingActionRepository interface
type PendingActionRepositoryImpl struct {
	*BaseRepository[models.PendingAction, models.PendingActionFilter]
}

// NewPendingActionRepository creates a new pending action repository
func NewPendingActionRepository(db *gorm.DB) PendingActionRepository {
	return &PendingActionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PendingAction, models.PendingActionFilter](db),
	}
}

// ByUUID retrieves a pending action by UUID
func (r *PendingActionRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.PendingAction, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format: %w", err)
	}

	filter := models.PendingActionFilter{UUID: &parsedUUID}
	actions, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending action by UUID: %w", err)
	}

	if len(actions) == 0 {
		return nil, nil
	}

	return actions[0], nil
}

// ListActionable retrieves pending, unexpired actions for a user.
// Expired rows are excluded but never deleted.
func (r *PendingActionRepositoryImpl) ListActionable(ctx context.Context, userID uint, now time.Time, limit, offset int) ([]*models.PendingAction, error) {
	db := r.getDB(ctx)

	var actions []*models.PendingAction
	query := db.
		Where("user_id = ?", userID).
		Where("status = ?", models.PendingActionStatusPending).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at ASC").
		Preload("Campaign").
		Preload("Prospect")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list actionable pending actions: %w", err)
	}

	return actions, nil
}

// CountPendingByCampaign counts still-pending actions for a campaign
func (r *PendingActionRepositoryImpl) CountPendingByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	status := models.PendingActionStatusPending
	filter := models.PendingActionFilter{
		CampaignID: &campaignID,
		Status:     &status,
	}
	return r.Count(ctx, filter)
}

// ExpireOldActions flips pending actions past their expiry to expired and
// returns the number of rows affected
func (r *PendingActionRepositoryImpl) ExpireOldActions(ctx context.Context, now time.Time) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	result := db.Model(&models.PendingAction{}).
		Where("status = ?", models.PendingActionStatusPending).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Updates(map[string]interface{}{
			"status":      models.PendingActionStatusExpired,
			"resolved_at": now,
			"updated_at":  now,
		})

	if result.Error != nil {
		err = result.Error
		return 0, fmt.Errorf("failed to expire old pending actions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ByFilter retrieves pending actions based on filter criteria
func (r *PendingActionRepositoryImpl) ByFilter(ctx context.Context, filter models.PendingActionFilter, orderBy string, limit, offset int) ([]*models.PendingAction, error) {
	db := r.getDB(ctx)

	var actions []*models.PendingAction
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

	query = query.Preload("Campaign").Preload("Prospect")

	err := query.Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending actions by filter: %w", err)
	}

	return actions, nil
}

// Count returns the number of pending actions matching the filter
func (r *PendingActionRepositoryImpl) Count(ctx context.Context, filter models.PendingActionFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var action models.PendingAction
	query := r.applyFilter(db.Model(&action), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending actions: %w", err)
	}

	return count, nil
}

// Exists checks if any pending action matching the filter exists
func (r *PendingActionRepositoryImpl) Exists(ctx context.Context, filter models.PendingActionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PendingActionRepositoryImpl) applyFilter(db *gorm.DB, filter models.PendingActionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.ProspectID != nil {
		db = db.Where("prospect_id = ?", *filter.ProspectID)
	}
	if filter.ActionType != nil {
		db = db.Where("action_type = ?", *filter.ActionType)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.ExpiresAfter != nil {
		db = db.Where("expires_at >= ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		db = db.Where("expires_at <= ?", *filter.ExpiresBefore)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}

	return db
}
