package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apexhq/outreach-engine/models"
	"gorm.io/gorm"
)

// CampaignProspectRepositoryImpl implements the CampaignProspectRepository interface
type CampaignProspectRepositoryImpl struct {
	*BaseRepository[models.CampaignProspect, models.CampaignProspectFilter]
}

// NewCampaignProspectRepository creates a new campaign prospect repository
func NewCampaignProspectRepository(db *gorm.DB) CampaignProspectRepository {
	return &CampaignProspectRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignProspect, models.CampaignProspectFilter](db),
	}
}

// ByCampaignAndProspect retrieves the link row for a (campaign, prospect) pair
func (r *CampaignProspectRepositoryImpl) ByCampaignAndProspect(ctx context.Context, campaignID, prospectID uint) (*models.CampaignProspect, error) {
	filter := models.CampaignProspectFilter{
		CampaignID: &campaignID,
		ProspectID: &prospectID,
	}
	links, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign prospect link: %w", err)
	}

	if len(links) == 0 {
		return nil, nil
	}

	return links[0], nil
}

// ListQueued retrieves queued links for a campaign in creation order.
// The dispatcher relies on this ordering being stable across cycles.
func (r *CampaignProspectRepositoryImpl) ListQueued(ctx context.Context, campaignID uint, limit int) ([]*models.CampaignProspect, error) {
	status := models.CampaignProspectStatusQueued
	filter := models.CampaignProspectFilter{
		CampaignID: &campaignID,
		Status:     &status,
	}
	return r.ByFilter(ctx, filter, "created_at ASC, id ASC", limit, 0)
}

// ListDueFollowUps retrieves links eligible for the next follow-up step:
// connection accepted or already messaged, under the step cap, and due.
func (r *CampaignProspectRepositoryImpl) ListDueFollowUps(ctx context.Context, campaignID uint, due time.Time, limit int) ([]*models.CampaignProspect, error) {
	db := r.getDB(ctx)

	var links []*models.CampaignProspect
	query := db.
		Where("campaign_id = ?", campaignID).
		Where("status IN ?", []models.CampaignProspectStatus{
			models.CampaignProspectStatusConnectionAccepted,
			models.CampaignProspectStatusMessageSent,
		}).
		Where("follow_up_count < ?", 3).
		Where("next_follow_up_at IS NOT NULL AND next_follow_up_at <= ?", due).
		Order("next_follow_up_at ASC, id ASC").
		Preload("Prospect")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due follow-ups: %w", err)
	}

	return links, nil
}

// ListTracked retrieves all non-terminal links for a campaign with their
// prospects preloaded. Used by the engagement sync.
func (r *CampaignProspectRepositoryImpl) ListTracked(ctx context.Context, campaignID uint) ([]*models.CampaignProspect, error) {
	db := r.getDB(ctx)

	var links []*models.CampaignProspect
	err := db.
		Where("campaign_id = ?", campaignID).
		Where("status IN ?", []models.CampaignProspectStatus{
			models.CampaignProspectStatusConnectionSent,
			models.CampaignProspectStatusConnectionAccepted,
			models.CampaignProspectStatusMessageSent,
		}).
		Order("id ASC").
		Preload("Prospect").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked campaign prospects: %w", err)
	}

	return links, nil
}

// CountConnectionsSentSince counts connection requests sent for a campaign
// since the given instant. The daily quota check passes midnight UTC here and
// re-derives the count on every run.
func (r *CampaignProspectRepositoryImpl) CountConnectionsSentSince(ctx context.Context, campaignID uint, since time.Time) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.CampaignProspect{}).
		Where("campaign_id = ?", campaignID).
		Where("connection_sent_at IS NOT NULL AND connection_sent_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count connections sent: %w", err)
	}

	return count, nil
}

// CountMessagesSentSince counts follow-up messages sent for a campaign since
// the given instant
func (r *CampaignProspectRepositoryImpl) CountMessagesSentSince(ctx context.Context, campaignID uint, since time.Time) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.CampaignProspect{}).
		Where("campaign_id = ?", campaignID).
		Where("last_message_sent_at IS NOT NULL AND last_message_sent_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages sent: %w", err)
	}

	return count, nil
}

// CountInStatuses counts links for a campaign in any of the given statuses
func (r *CampaignProspectRepositoryImpl) CountInStatuses(ctx context.Context, campaignID uint, statuses []models.CampaignProspectStatus) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.CampaignProspect{}).
		Where("campaign_id = ?", campaignID).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count campaign prospects by status: %w", err)
	}

	return count, nil
}

// CountScheduledFollowUps counts links that still have a follow-up scheduled
func (r *CampaignProspectRepositoryImpl) CountScheduledFollowUps(ctx context.Context, campaignID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.CampaignProspect{}).
		Where("campaign_id = ?", campaignID).
		Where("next_follow_up_at IS NOT NULL").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled follow-ups: %w", err)
	}

	return count, nil
}

// ByFilter retrieves campaign prospects based on filter criteria
func (r *CampaignProspectRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignProspectFilter, orderBy string, limit, offset int) ([]*models.CampaignProspect, error) {
	db := r.getDB(ctx)

	var links []*models.CampaignProspect
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

	query = query.Preload("Prospect")

	err := query.Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign prospects by filter: %w", err)
	}

	return links, nil
}

// Count returns the number of campaign prospects matching the filter
func (r *CampaignProspectRepositoryImpl) Count(ctx context.Context, filter models.CampaignProspectFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var link models.CampaignProspect
	query := r.applyFilter(db.Model(&link), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count campaign prospects: %w", err)
	}

	return count, nil
}

// Exists checks if any campaign prospect matching the filter exists
func (r *CampaignProspectRepositoryImpl) Exists(ctx context.Context, filter models.CampaignProspectFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignProspectRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignProspectFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.ProspectID != nil {
		db = db.Where("prospect_id = ?", *filter.ProspectID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.MaxFollowUpCount != nil {
		db = db.Where("follow_up_count < ?", *filter.MaxFollowUpCount)
	}
	if filter.FollowUpDueBefore != nil {
		db = db.Where("next_follow_up_at IS NOT NULL AND next_follow_up_at <= ?", *filter.FollowUpDueBefore)
	}
	if filter.ConnectionSentFrom != nil {
		db = db.Where("connection_sent_at >= ?", *filter.ConnectionSentFrom)
	}
	if filter.ConnectionSentTo != nil {
		db = db.Where("connection_sent_at <= ?", *filter.ConnectionSentTo)
	}
	if filter.MessageSentFrom != nil {
		db = db.Where("last_message_sent_at >= ?", *filter.MessageSentFrom)
	}
	if filter.MessageSentTo != nil {
		db = db.Where("last_message_sent_at <= ?", *filter.MessageSentTo)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}

	return db
}
