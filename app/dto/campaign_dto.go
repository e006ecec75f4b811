package dto

import (
	"time"
)

// CreateCampaignRequest represents the request to create a new outreach campaign
type CreateCampaignRequest struct {
	UserID               uint     `json:"-"`
	Name                 string   `json:"name" validate:"required,min=1,max=255"`
	JobTitles            []string `json:"job_titles,omitempty" validate:"omitempty,dive,max=255"`
	Locations            []string `json:"locations,omitempty" validate:"omitempty,dive,max=255"`
	Keywords             []string `json:"keywords,omitempty" validate:"omitempty,dive,max=255"`
	Industries           []string `json:"industries,omitempty" validate:"omitempty,dive,max=255"`
	DailyConnectionLimit *int     `json:"daily_connection_limit,omitempty" validate:"omitempty,min=1,max=100"`
	DailyMessageLimit    *int     `json:"daily_message_limit,omitempty" validate:"omitempty,min=1,max=200"`
	ConnectionMessage    string   `json:"connection_message,omitempty" validate:"max=300"`
	FollowUpMessage1     string   `json:"follow_up_message_1,omitempty" validate:"max=2000"`
	FollowUpMessage2     string   `json:"follow_up_message_2,omitempty" validate:"max=2000"`
	FollowUpMessage3     string   `json:"follow_up_message_3,omitempty" validate:"max=2000"`
	FollowUpDelayDays1   *int     `json:"follow_up_delay_days_1,omitempty" validate:"omitempty,min=1,max=90"`
	FollowUpDelayDays2   *int     `json:"follow_up_delay_days_2,omitempty" validate:"omitempty,min=1,max=90"`
	FollowUpDelayDays3   *int     `json:"follow_up_delay_days_3,omitempty" validate:"omitempty,min=1,max=90"`
}

// CreateCampaignResponse represents the response to create a new outreach campaign
type CreateCampaignResponse struct {
	UUID      string    `json:"uuid"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CampaignResponse represents a campaign in responses
type CampaignResponse struct {
	UUID                 string     `json:"uuid"`
	Name                 string     `json:"name"`
	Status               string     `json:"status"`
	JobTitles            []string   `json:"job_titles,omitempty"`
	Locations            []string   `json:"locations,omitempty"`
	Keywords             []string   `json:"keywords,omitempty"`
	Industries           []string   `json:"industries,omitempty"`
	DailyConnectionLimit int        `json:"daily_connection_limit"`
	DailyMessageLimit    int        `json:"daily_message_limit"`
	ConnectionMessage    string     `json:"connection_message,omitempty"`
	FollowUpMessage1     string     `json:"follow_up_message_1,omitempty"`
	FollowUpMessage2     string     `json:"follow_up_message_2,omitempty"`
	FollowUpMessage3     string     `json:"follow_up_message_3,omitempty"`
	FollowUpDelayDays1   int        `json:"follow_up_delay_days_1"`
	FollowUpDelayDays2   int        `json:"follow_up_delay_days_2"`
	FollowUpDelayDays3   int        `json:"follow_up_delay_days_3"`
	ConnectionsSent      int        `json:"connections_sent"`
	ConnectionsAccepted  int        `json:"connections_accepted"`
	MessagesSent         int        `json:"messages_sent"`
	RepliesReceived      int        `json:"replies_received"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// ListCampaignsRequest represents the request to list a user's campaigns
type ListCampaignsRequest struct {
	UserID   uint    `json:"-"`
	Page     int     `json:"page" validate:"min=1"`
	PageSize int     `json:"page_size" validate:"min=1,max=100"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=draft active paused completed"`
}

// ListCampaignsResponse represents the paginated campaign listing
type ListCampaignsResponse struct {
	Items      []CampaignResponse `json:"items"`
	Pagination PaginationInfo     `json:"pagination"`
}

// PaginationInfo carries paging metadata in list responses
type PaginationInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
