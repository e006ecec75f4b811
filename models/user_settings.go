package models

import (
	"time"
)

// UserSettings holds per-user pipeline behavior flags. AutopilotEnabled
// governs whether the dispatcher and scheduler act immediately or defer to
// pending-action creation.
type UserSettings struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex:uk_user_settings_user_id" json:"user_id"`
	AutopilotEnabled bool       `gorm:"not null;default:false" json:"autopilot_enabled"`
	CreatedAt        time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (UserSettings) TableName() string {
	return "user_settings"
}

// BeforeUpdate is called before updating a record
func (s *UserSettings) BeforeUpdate() error {
	now := time.Now().UTC()
	s.UpdatedAt = &now
	return nil
}

// UserSettingsFilter represents filter criteria for user settings
type UserSettingsFilter struct {
	ID               *uint `json:"id,omitempty"`
	UserID           *uint `json:"user_id,omitempty"`
	AutopilotEnabled *bool `json:"autopilot_enabled,omitempty"`
}
