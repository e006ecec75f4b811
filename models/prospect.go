package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProspectConnectionStatus represents the prospect's global connection state,
// independent of any campaign.
type ProspectConnectionStatus string

const (
	ProspectConnectionStatusNone      ProspectConnectionStatus = "none"
	ProspectConnectionStatusPending   ProspectConnectionStatus = "pending"
	ProspectConnectionStatusConnected ProspectConnectionStatus = "connected"
)

// String returns the string representation of the status
func (s ProspectConnectionStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ProspectConnectionStatus) Valid() bool {
	switch s {
	case ProspectConnectionStatusNone, ProspectConnectionStatusPending,
		ProspectConnectionStatusConnected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ProspectConnectionStatus
func (s *ProspectConnectionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ProspectConnectionStatus(v)
	case []byte:
		*s = ProspectConnectionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ProspectConnectionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ProspectConnectionStatus
func (s ProspectConnectionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ProspectConnectionStatus: %s", s)
	}
	return string(s), nil
}

// CanTransitionTo checks if the connection status can move to the given status
func (s ProspectConnectionStatus) CanTransitionTo(newStatus ProspectConnectionStatus) bool {
	switch s {
	case ProspectConnectionStatusNone:
		return newStatus == ProspectConnectionStatusPending ||
			newStatus == ProspectConnectionStatusConnected
	case ProspectConnectionStatusPending:
		return newStatus == ProspectConnectionStatusConnected
	default:
		return false
	}
}

// Prospect represents a person record scoped to the owning user. The external
// profile id is unique within that user's scope.
type Prospect struct {
	ID                uint                     `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:uk_prospects_uuid" json:"uuid"`
	UserID            uint                     `gorm:"not null;uniqueIndex:uk_prospects_user_profile;index:idx_prospects_user_id" json:"user_id"`
	ExternalProfileID string                   `gorm:"type:varchar(255);uniqueIndex:uk_prospects_user_profile" json:"external_profile_id"`
	FullName          string                   `gorm:"type:varchar(255);not null" json:"full_name"`
	Company           string                   `gorm:"type:varchar(255)" json:"company"`
	JobTitle          string                   `gorm:"type:varchar(255)" json:"job_title"`
	Location          string                   `gorm:"type:varchar(255)" json:"location"`
	AvatarURL         string                   `gorm:"type:text" json:"avatar_url"`
	ConnectionStatus  ProspectConnectionStatus `gorm:"type:prospect_connection_status;not null;default:'none';index:idx_prospects_connection_status" json:"connection_status"`
	CreatedAt         time.Time                `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt         *time.Time               `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Prospect) TableName() string {
	return "prospects"
}

// BeforeCreate is called before creating a new record
func (p *Prospect) BeforeCreate() error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.ConnectionStatus == "" {
		p.ConnectionStatus = ProspectConnectionStatusNone
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *Prospect) BeforeUpdate() error {
	now := time.Now().UTC()
	p.UpdatedAt = &now
	return nil
}

// ProspectFilter represents filter criteria for prospects
type ProspectFilter struct {
	ID                *uint                     `json:"id,omitempty"`
	UUID              *uuid.UUID                `json:"uuid,omitempty"`
	UserID            *uint                     `json:"user_id,omitempty"`
	ExternalProfileID *string                   `json:"external_profile_id,omitempty"`
	ConnectionStatus  *ProspectConnectionStatus `json:"connection_status,omitempty"`
	Company           *string                   `json:"company,omitempty"`
	CreatedAfter      *time.Time                `json:"created_after,omitempty"`
	CreatedBefore     *time.Time                `json:"created_before,omitempty"`
}
