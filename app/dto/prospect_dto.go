package dto

import (
	"time"
)

// CreateProspectRequest represents the request to register a prospect manually
type CreateProspectRequest struct {
	UserID            uint   `json:"-"`
	ExternalProfileID string `json:"external_profile_id" validate:"required,max=255"`
	FullName          string `json:"full_name" validate:"required,max=255"`
	Company           string `json:"company,omitempty" validate:"max=255"`
	JobTitle          string `json:"job_title,omitempty" validate:"max=255"`
	Location          string `json:"location,omitempty" validate:"max=255"`
	AvatarURL         string `json:"avatar_url,omitempty" validate:"omitempty,url,max=1024"`
}

// ProspectResponse represents a prospect in responses
type ProspectResponse struct {
	ID                uint      `json:"id"`
	ExternalProfileID string    `json:"external_profile_id"`
	FullName          string    `json:"full_name"`
	Company           string    `json:"company,omitempty"`
	JobTitle          string    `json:"job_title,omitempty"`
	Location          string    `json:"location,omitempty"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	ConnectionStatus  string    `json:"connection_status"`
	CreatedAt         time.Time `json:"created_at"`
}

// AttachProspectRequest represents the request to link a prospect to a campaign
type AttachProspectRequest struct {
	UserID       uint   `json:"-"`
	CampaignUUID string `json:"campaign_uuid" validate:"required,uuid4"`
	ProspectID   uint   `json:"prospect_id" validate:"required"`
}

// ImportProspectsRequest represents a spreadsheet bulk import into a campaign.
// The sheet's first row is a header; recognized columns are profile_id,
// full_name, company, job_title, location.
type ImportProspectsRequest struct {
	UserID       uint   `json:"-"`
	CampaignUUID string `json:"campaign_uuid" validate:"required,uuid4"`
	FileName     string `json:"file_name,omitempty"`
	Content      []byte `json:"-"`
}

// ImportProspectsResponse reports the outcome of a bulk import
type ImportProspectsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
