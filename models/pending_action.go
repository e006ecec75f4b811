package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PendingActionType represents the kind of deferred action awaiting approval
type PendingActionType string

const (
	PendingActionTypeSendConnection PendingActionType = "send_connection"
	PendingActionTypeSendFollowUp   PendingActionType = "send_follow_up"
)

// Valid checks if the action type is valid
func (t PendingActionType) Valid() bool {
	switch t {
	case PendingActionTypeSendConnection, PendingActionTypeSendFollowUp:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action type
func (t PendingActionType) String() string {
	return string(t)
}

// PendingActionStatus represents the approval state of a pending action
type PendingActionStatus string

const (
	PendingActionStatusPending  PendingActionStatus = "pending"
	PendingActionStatusApproved PendingActionStatus = "approved"
	PendingActionStatusDenied   PendingActionStatus = "denied"
	PendingActionStatusExecuted PendingActionStatus = "executed"
	PendingActionStatusExpired  PendingActionStatus = "expired"
)

// String returns the string representation of the status
func (s PendingActionStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s PendingActionStatus) Valid() bool {
	switch s {
	case PendingActionStatusPending, PendingActionStatusApproved,
		PendingActionStatusDenied, PendingActionStatusExecuted,
		PendingActionStatusExpired:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PendingActionStatus
func (s *PendingActionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PendingActionStatus(v)
	case []byte:
		*s = PendingActionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PendingActionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PendingActionStatus
func (s PendingActionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PendingActionStatus: %s", s)
	}
	return string(s), nil
}

// CanTransitionTo checks if the status can move to the given status.
// All moves out of pending are one-way.
func (s PendingActionStatus) CanTransitionTo(newStatus PendingActionStatus) bool {
	switch s {
	case PendingActionStatusPending:
		return newStatus == PendingActionStatusApproved ||
			newStatus == PendingActionStatusDenied ||
			newStatus == PendingActionStatusExpired
	case PendingActionStatusApproved:
		return newStatus == PendingActionStatusExecuted
	default:
		return false
	}
}

// PendingActionMetadata carries display context for the approval UI
type PendingActionMetadata struct {
	CampaignName string `json:"campaign_name,omitempty"`
	ProspectName string `json:"prospect_name,omitempty"`
	FollowUpStep int    `json:"follow_up_step,omitempty"`
}

// Value implements the driver.Valuer interface for PendingActionMetadata
func (m PendingActionMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for PendingActionMetadata
func (m *PendingActionMetadata) Scan(value any) error {
	if value == nil {
		*m = PendingActionMetadata{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PendingActionMetadata", value)
	}

	return json.Unmarshal(bytes, m)
}

// PendingAction is a deferred outreach action awaiting human approval,
// created when autopilot is disabled for the campaign owner.
type PendingAction struct {
	ID         uint                  `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:uk_pending_actions_uuid" json:"uuid"`
	UserID     uint                  `gorm:"not null;index:idx_pending_actions_user_id" json:"user_id"`
	CampaignID uint                  `gorm:"not null;index:idx_pending_actions_campaign_id" json:"campaign_id"`
	ProspectID uint                  `gorm:"not null" json:"prospect_id"`
	ActionType PendingActionType     `gorm:"type:pending_action_type;not null" json:"action_type"`
	Message    string                `gorm:"type:text;not null" json:"message"`
	Status     PendingActionStatus   `gorm:"type:pending_action_status;not null;default:'pending';index:idx_pending_actions_status" json:"status"`
	Metadata   PendingActionMetadata `gorm:"type:jsonb" json:"metadata"`
	ExpiresAt  *time.Time            `gorm:"index:idx_pending_actions_expires_at" json:"expires_at,omitempty"`
	ResolvedAt *time.Time            `json:"resolved_at,omitempty"`
	CreatedAt  time.Time             `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  *time.Time            `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Prospect *Prospect `gorm:"foreignKey:ProspectID;references:ID" json:"prospect,omitempty"`
}

// TableName returns the table name for the model
func (PendingAction) TableName() string {
	return "pending_actions"
}

// BeforeCreate is called before creating a new record
func (a *PendingAction) BeforeCreate() error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.Status == "" {
		a.Status = PendingActionStatusPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *PendingAction) BeforeUpdate() error {
	now := time.Now().UTC()
	a.UpdatedAt = &now
	return nil
}

// IsActionable reports whether the action can still be approved or denied
func (a *PendingAction) IsActionable(now time.Time) bool {
	if a.Status != PendingActionStatusPending {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// PendingActionFilter represents filter criteria for pending actions
type PendingActionFilter struct {
	ID            *uint                `json:"id,omitempty"`
	UUID          *uuid.UUID           `json:"uuid,omitempty"`
	UserID        *uint                `json:"user_id,omitempty"`
	CampaignID    *uint                `json:"campaign_id,omitempty"`
	ProspectID    *uint                `json:"prospect_id,omitempty"`
	ActionType    *PendingActionType   `json:"action_type,omitempty"`
	Status        *PendingActionStatus `json:"status,omitempty"`
	ExpiresAfter  *time.Time           `json:"expires_after,omitempty"`
	ExpiresBefore *time.Time           `json:"expires_before,omitempty"`
	CreatedAfter  *time.Time           `json:"created_after,omitempty"`
	CreatedBefore *time.Time           `json:"created_before,omitempty"`
}
