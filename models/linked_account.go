package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LinkedAccountStatus represents the connection state of a user's messaging
// provider account.
type LinkedAccountStatus string

const (
	LinkedAccountStatusActive       LinkedAccountStatus = "active"
	LinkedAccountStatusDisconnected LinkedAccountStatus = "disconnected"
	LinkedAccountStatusExpired      LinkedAccountStatus = "expired"
)

// String returns the string representation of the status
func (s LinkedAccountStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s LinkedAccountStatus) Valid() bool {
	switch s {
	case LinkedAccountStatusActive, LinkedAccountStatusDisconnected,
		LinkedAccountStatusExpired:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for LinkedAccountStatus
func (s *LinkedAccountStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = LinkedAccountStatus(v)
	case []byte:
		*s = LinkedAccountStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LinkedAccountStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LinkedAccountStatus
func (s LinkedAccountStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid LinkedAccountStatus: %s", s)
	}
	return string(s), nil
}

// LinkedAccount represents a messaging provider account linked by a user.
// The pipeline requires exactly one active account per campaign owner.
// EncryptedCredential holds the sealed provider API key.
type LinkedAccount struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:uk_linked_accounts_uuid" json:"uuid"`
	UserID            uint                `gorm:"not null;index:idx_linked_accounts_user_id" json:"user_id"`
	ProviderAccountID string              `gorm:"type:varchar(255);not null" json:"provider_account_id"`
	DisplayName       string              `gorm:"type:varchar(255)" json:"display_name"`
	Status            LinkedAccountStatus `gorm:"type:linked_account_status;not null;default:'disconnected';index:idx_linked_accounts_status" json:"status"`

	EncryptedCredential []byte `gorm:"type:bytea" json:"-"`

	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (LinkedAccount) TableName() string {
	return "linked_accounts"
}

// BeforeCreate is called before creating a new record
func (a *LinkedAccount) BeforeCreate() error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.Status == "" {
		a.Status = LinkedAccountStatusDisconnected
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *LinkedAccount) BeforeUpdate() error {
	now := time.Now().UTC()
	a.UpdatedAt = &now
	return nil
}

// IsUsable reports whether the pipeline may send through this account
func (a *LinkedAccount) IsUsable() bool {
	return a.Status == LinkedAccountStatusActive && len(a.EncryptedCredential) > 0
}

// LinkedAccountFilter represents filter criteria for linked accounts
type LinkedAccountFilter struct {
	ID                *uint                `json:"id,omitempty"`
	UUID              *uuid.UUID           `json:"uuid,omitempty"`
	UserID            *uint                `json:"user_id,omitempty"`
	ProviderAccountID *string              `json:"provider_account_id,omitempty"`
	Status            *LinkedAccountStatus `json:"status,omitempty"`
}
