package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CampaignStatus represents the lifecycle status of an outreach campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive,
		CampaignStatusPaused, CampaignStatusCompleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Campaign represents an outreach campaign: targeting criteria, message
// templates, daily caps, and running counters.
type Campaign struct {
	ID     uint           `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	UserID uint           `gorm:"not null;index:idx_campaigns_user_id" json:"user_id"`
	Name   string         `gorm:"type:varchar(255);not null" json:"name"`
	Status CampaignStatus `gorm:"type:campaign_status;not null;default:'draft';index:idx_campaigns_status" json:"status"`

	// Targeting criteria
	JobTitles  pq.StringArray `gorm:"type:text[]" json:"job_titles"`
	Locations  pq.StringArray `gorm:"type:text[]" json:"locations"`
	Keywords   pq.StringArray `gorm:"type:text[]" json:"keywords"`
	Industries pq.StringArray `gorm:"type:text[]" json:"industries"`

	// Daily caps
	DailyConnectionLimit int `gorm:"not null;default:25" json:"daily_connection_limit"`
	DailyMessageLimit    int `gorm:"not null;default:50" json:"daily_message_limit"`

	// Message templates
	ConnectionMessage string `gorm:"type:text" json:"connection_message"`
	FollowUpMessage1  string `gorm:"type:text" json:"follow_up_message_1"`
	FollowUpMessage2  string `gorm:"type:text" json:"follow_up_message_2"`
	FollowUpMessage3  string `gorm:"type:text" json:"follow_up_message_3"`

	// Delay in days before follow-up step N is due
	FollowUpDelayDays1 int `gorm:"not null;default:3" json:"follow_up_delay_days_1"`
	FollowUpDelayDays2 int `gorm:"not null;default:7" json:"follow_up_delay_days_2"`
	FollowUpDelayDays3 int `gorm:"not null;default:14" json:"follow_up_delay_days_3"`

	// Counters maintained by the pipeline
	ConnectionsSent     int `gorm:"not null;default:0" json:"connections_sent"`
	ConnectionsAccepted int `gorm:"not null;default:0" json:"connections_accepted"`
	MessagesSent        int `gorm:"not null;default:0" json:"messages_sent"`
	RepliesReceived     int `gorm:"not null;default:0" json:"replies_received"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate() error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate() error {
	now := time.Now().UTC()
	c.UpdatedAt = &now
	return nil
}

// IsProcessable reports whether the pipeline should run this campaign
func (c *Campaign) IsProcessable() bool {
	return c.Status == CampaignStatusActive
}

// CanTransitionTo checks if the campaign can transition to the given status
func (c *Campaign) CanTransitionTo(newStatus CampaignStatus) bool {
	switch c.Status {
	case CampaignStatusDraft:
		return newStatus == CampaignStatusActive
	case CampaignStatusActive:
		return newStatus == CampaignStatusPaused ||
			newStatus == CampaignStatusCompleted
	case CampaignStatusPaused:
		return newStatus == CampaignStatusActive
	default:
		return false
	}
}

// FollowUpTemplate returns the template for follow-up step (1-based).
// An empty string means the step is not configured.
func (c *Campaign) FollowUpTemplate(step int) string {
	switch step {
	case 1:
		return c.FollowUpMessage1
	case 2:
		return c.FollowUpMessage2
	case 3:
		return c.FollowUpMessage3
	default:
		return ""
	}
}

// FollowUpDelayDays returns the configured delay before follow-up step (1-based)
func (c *Campaign) FollowUpDelayDays(step int) int {
	switch step {
	case 1:
		return c.FollowUpDelayDays1
	case 2:
		return c.FollowUpDelayDays2
	case 3:
		return c.FollowUpDelayDays3
	default:
		return 0
	}
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint           `json:"id,omitempty"`
	UUID          *uuid.UUID      `json:"uuid,omitempty"`
	UserID        *uint           `json:"user_id,omitempty"`
	Status        *CampaignStatus `json:"status,omitempty"`
	Name          *string         `json:"name,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
}
