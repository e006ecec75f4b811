// Package models contains domain entities for the outreach engine
package models

import (
	"encoding/json"
	"time"
)

// ActivityLog is an immutable audit record of pipeline activity.
// Write-only from the pipeline's perspective.
type ActivityLog struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index:idx_activity_log_user_id" json:"user_id"`
	CampaignID *uint           `gorm:"index:idx_activity_log_campaign_id" json:"campaign_id,omitempty"`
	ProspectID *uint           `json:"prospect_id,omitempty"`
	Activity   string          `gorm:"type:varchar(64);not null;index:idx_activity_log_activity" json:"activity"`
	Metadata   json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_activity_log_created_at" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

// Activity type constants
const (
	ActivityProspectsDiscovered   = "prospects_discovered"
	ActivityConnectionSent        = "connection_sent"
	ActivityConnectionAccepted    = "connection_accepted"
	ActivityFollowUpSent          = "follow_up_sent"
	ActivityReplyReceived         = "reply_received"
	ActivityCampaignStarted       = "campaign_started"
	ActivityCampaignPaused        = "campaign_paused"
	ActivityCampaignResumed       = "campaign_resumed"
	ActivityCampaignCompleted     = "campaign_completed"
	ActivityProspectsImported     = "prospects_imported"
	ActivityPendingActionCreated  = "pending_action_created"
	ActivityPendingActionApproved = "pending_action_approved"
	ActivityPendingActionDenied   = "pending_action_denied"
)

// ActivityLogFilter represents filter criteria for activity log queries
type ActivityLogFilter struct {
	ID            *uint
	UserID        *uint
	CampaignID    *uint
	ProspectID    *uint
	Activity      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
