package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignProspectStatus represents the per-campaign progress state for one
// prospect. It advances monotonically; the only backward-looking move is to
// failed, which is terminal.
type CampaignProspectStatus string

const (
	CampaignProspectStatusQueued             CampaignProspectStatus = "queued"
	CampaignProspectStatusConnectionSent     CampaignProspectStatus = "connection_sent"
	CampaignProspectStatusConnectionAccepted CampaignProspectStatus = "connection_accepted"
	CampaignProspectStatusMessageSent        CampaignProspectStatus = "message_sent"
	CampaignProspectStatusReplied            CampaignProspectStatus = "replied"
	CampaignProspectStatusFailed             CampaignProspectStatus = "failed"
)

// String returns the string representation of the status
func (s CampaignProspectStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignProspectStatus) Valid() bool {
	switch s {
	case CampaignProspectStatusQueued, CampaignProspectStatusConnectionSent,
		CampaignProspectStatusConnectionAccepted, CampaignProspectStatusMessageSent,
		CampaignProspectStatusReplied, CampaignProspectStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignProspectStatus
func (s *CampaignProspectStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignProspectStatus(v)
	case []byte:
		*s = CampaignProspectStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignProspectStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignProspectStatus
func (s CampaignProspectStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignProspectStatus: %s", s)
	}
	return string(s), nil
}

// IsTerminal reports whether no further transitions are possible
func (s CampaignProspectStatus) IsTerminal() bool {
	return s == CampaignProspectStatusFailed || s == CampaignProspectStatusReplied
}

// CanTransitionTo checks if the status can move to the given status
func (s CampaignProspectStatus) CanTransitionTo(newStatus CampaignProspectStatus) bool {
	if newStatus == CampaignProspectStatusFailed {
		return !s.IsTerminal()
	}
	switch s {
	case CampaignProspectStatusQueued:
		return newStatus == CampaignProspectStatusConnectionSent
	case CampaignProspectStatusConnectionSent:
		return newStatus == CampaignProspectStatusConnectionAccepted ||
			newStatus == CampaignProspectStatusReplied
	case CampaignProspectStatusConnectionAccepted:
		return newStatus == CampaignProspectStatusMessageSent ||
			newStatus == CampaignProspectStatusReplied
	case CampaignProspectStatusMessageSent:
		return newStatus == CampaignProspectStatusReplied
	default:
		return false
	}
}

// CampaignProspect links one campaign to one prospect and carries the
// follow-up schedule. A (campaign, prospect) pair is unique.
type CampaignProspect struct {
	ID         uint                   `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:uk_campaign_prospects_uuid" json:"uuid"`
	CampaignID uint                   `gorm:"not null;uniqueIndex:uk_campaign_prospects_pair;index:idx_campaign_prospects_campaign_id" json:"campaign_id"`
	ProspectID uint                   `gorm:"not null;uniqueIndex:uk_campaign_prospects_pair" json:"prospect_id"`
	Status     CampaignProspectStatus `gorm:"type:campaign_prospect_status;not null;default:'queued';index:idx_campaign_prospects_status" json:"status"`

	FollowUpCount     int        `gorm:"not null;default:0" json:"follow_up_count"`
	NextFollowUpAt    *time.Time `gorm:"index:idx_campaign_prospects_next_follow_up_at" json:"next_follow_up_at,omitempty"`
	ConnectionSentAt  *time.Time `gorm:"index:idx_campaign_prospects_connection_sent_at" json:"connection_sent_at,omitempty"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	LastMessageSentAt *time.Time `gorm:"index:idx_campaign_prospects_last_message_sent_at" json:"last_message_sent_at,omitempty"`
	RepliedAt         *time.Time `json:"replied_at,omitempty"`
	FailureReason     *string    `gorm:"type:text" json:"failure_reason,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaign_prospects_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Prospect *Prospect `gorm:"foreignKey:ProspectID;references:ID" json:"prospect,omitempty"`
}

// TableName returns the table name for the model
func (CampaignProspect) TableName() string {
	return "campaign_prospects"
}

// BeforeCreate is called before creating a new record
func (cp *CampaignProspect) BeforeCreate() error {
	if cp.UUID == uuid.Nil {
		cp.UUID = uuid.New()
	}
	if cp.Status == "" {
		cp.Status = CampaignProspectStatusQueued
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (cp *CampaignProspect) BeforeUpdate() error {
	now := time.Now().UTC()
	cp.UpdatedAt = &now
	return nil
}

// TransitionTo applies a guarded status change. Writing the current status
// again is a no-op so repeated steps (second and third follow-ups) pass.
func (cp *CampaignProspect) TransitionTo(status CampaignProspectStatus) error {
	if status == cp.Status {
		return nil
	}
	if !cp.Status.CanTransitionTo(status) {
		return fmt.Errorf("campaign prospect cannot move from %s to %s", cp.Status, status)
	}
	cp.Status = status
	return nil
}

// IsFollowUpEligible reports whether the scheduler may pick this link up
func (cp *CampaignProspect) IsFollowUpEligible(now time.Time) bool {
	if cp.Status != CampaignProspectStatusConnectionAccepted &&
		cp.Status != CampaignProspectStatusMessageSent {
		return false
	}
	if cp.FollowUpCount >= 3 {
		return false
	}
	return cp.NextFollowUpAt != nil && !cp.NextFollowUpAt.After(now)
}

// CampaignProspectFilter represents filter criteria for campaign prospects
type CampaignProspectFilter struct {
	ID                 *uint                   `json:"id,omitempty"`
	UUID               *uuid.UUID              `json:"uuid,omitempty"`
	CampaignID         *uint                   `json:"campaign_id,omitempty"`
	ProspectID         *uint                   `json:"prospect_id,omitempty"`
	Status             *CampaignProspectStatus `json:"status,omitempty"`
	MaxFollowUpCount   *int                    `json:"max_follow_up_count,omitempty"`
	FollowUpDueBefore  *time.Time              `json:"follow_up_due_before,omitempty"`
	ConnectionSentFrom *time.Time              `json:"connection_sent_from,omitempty"`
	ConnectionSentTo   *time.Time              `json:"connection_sent_to,omitempty"`
	MessageSentFrom    *time.Time              `json:"message_sent_from,omitempty"`
	MessageSentTo      *time.Time              `json:"message_sent_to,omitempty"`
	CreatedAfter       *time.Time              `json:"created_after,omitempty"`
	CreatedBefore      *time.Time              `json:"created_before,omitempty"`
}
