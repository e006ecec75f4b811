// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/apexhq/outreach-engine/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CampaignRepository defines operations for outreach campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ListActive(ctx context.Context) ([]*models.Campaign, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Campaign, error)
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error
	IncrementCounter(ctx context.Context, id uint, column string, delta int) error
}

// ProspectRepository defines operations for prospects
type ProspectRepository interface {
	Repository[models.Prospect, models.ProspectFilter]
	ByExternalProfileID(ctx context.Context, userID uint, externalProfileID string) (*models.Prospect, error)
	UpdateConnectionStatus(ctx context.Context, id uint, status models.ProspectConnectionStatus) error
}

// CampaignProspectRepository defines operations for campaign-prospect links
type CampaignProspectRepository interface {
	Repository[models.CampaignProspect, models.CampaignProspectFilter]
	ByCampaignAndProspect(ctx context.Context, campaignID, prospectID uint) (*models.CampaignProspect, error)
	ListQueued(ctx context.Context, campaignID uint, limit int) ([]*models.CampaignProspect, error)
	ListDueFollowUps(ctx context.Context, campaignID uint, due time.Time, limit int) ([]*models.CampaignProspect, error)
	ListTracked(ctx context.Context, campaignID uint) ([]*models.CampaignProspect, error)
	CountConnectionsSentSince(ctx context.Context, campaignID uint, since time.Time) (int64, error)
	CountMessagesSentSince(ctx context.Context, campaignID uint, since time.Time) (int64, error)
	CountInStatuses(ctx context.Context, campaignID uint, statuses []models.CampaignProspectStatus) (int64, error)
	CountScheduledFollowUps(ctx context.Context, campaignID uint) (int64, error)
}

// PendingActionRepository defines operations for pending approval actions
type PendingActionRepository interface {
	Repository[models.PendingAction, models.PendingActionFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PendingAction, error)
	ListActionable(ctx context.Context, userID uint, now time.Time, limit, offset int) ([]*models.PendingAction, error)
	CountPendingByCampaign(ctx context.Context, campaignID uint) (int64, error)
	ExpireOldActions(ctx context.Context, now time.Time) (int64, error)
}

// ActivityLogRepository defines operations for the activity log
type ActivityLogRepository interface {
	Repository[models.ActivityLog, models.ActivityLogFilter]
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.ActivityLog, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.ActivityLog, error)
}

// UserSettingsRepository defines operations for per-user settings
type UserSettingsRepository interface {
	Repository[models.UserSettings, models.UserSettingsFilter]
	ByUserID(ctx context.Context, userID uint) (*models.UserSettings, error)
}

// LinkedAccountRepository defines operations for linked messaging accounts
type LinkedAccountRepository interface {
	Repository[models.LinkedAccount, models.LinkedAccountFilter]
	ListActiveByUser(ctx context.Context, userID uint) ([]*models.LinkedAccount, error)
	UpdateStatus(ctx context.Context, id uint, status models.LinkedAccountStatus) error
}
