package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apexhq/outreach-engine/models"
	"gorm.io/gorm"
)

// ProspectRepositoryImpl implements the ProspectRepository interface
type ProspectRepositoryImpl struct {
	*BaseRepository[models.Prospect, models.ProspectFilter]
}

// NewProspectRepository creates a new prospect repository
func NewProspectRepository(db *gorm.DB) ProspectRepository {
	return &ProspectRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Prospect, models.ProspectFilter](db),
	}
}

// ByExternalProfileID retrieves a prospect by its external profile id within
// the owning user's scope
func (r *ProspectRepositoryImpl) ByExternalProfileID(ctx context.Context, userID uint, externalProfileID string) (*models.Prospect, error) {
	filter := models.ProspectFilter{
		UserID:            &userID,
		ExternalProfileID: &externalProfileID,
	}
	prospects, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find prospect by external profile id: %w", err)
	}

	if len(prospects) == 0 {
		return nil, nil
	}

	return prospects[0], nil
}

// UpdateConnectionStatus updates only the connection status of a prospect
func (r *ProspectRepositoryImpl) UpdateConnectionStatus(ctx context.Context, id uint, status models.ProspectConnectionStatus) error {
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

	err = db.Model(&models.Prospect{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"connection_status": status,
			"updated_at":        time.Now().UTC(),
		}).Error

	if err != nil {
		return fmt.Errorf("failed to update prospect connection status: %w", err)
	}

	return nil
}

// ByFilter retrieves prospects based on filter criteria
func (r *ProspectRepositoryImpl) ByFilter(ctx context.Context, filter models.ProspectFilter, orderBy string, limit, offset int) ([]*models.Prospect, error) {
	db := r.getDB(ctx)

	var prospects []*models.Prospect
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

	err := query.Find(&prospects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find prospects by filter: %w", err)
	}

	return prospects, nil
}

// Count returns the number of prospects matching the filter
func (r *ProspectRepositoryImpl) Count(ctx context.Context, filter models.ProspectFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var prospect models.Prospect
	query := r.applyFilter(db.Model(&prospect), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count prospects: %w", err)
	}

	return count, nil
}

// Exists checks if any prospect matching the filter exists
func (r *ProspectRepositoryImpl) Exists(ctx context.Context, filter models.ProspectFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ProspectRepositoryImpl) applyFilter(db *gorm.DB, filter models.ProspectFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.ExternalProfileID != nil {
		db = db.Where("external_profile_id = ?", *filter.ExternalProfileID)
	}
	if filter.ConnectionStatus != nil {
		db = db.Where("connection_status = ?", *filter.ConnectionStatus)
	}
	if filter.Company != nil {
		db = db.Where("company ILIKE ?", "%"+*filter.Company+"%")
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}

	return db
}
