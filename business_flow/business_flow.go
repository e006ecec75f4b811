// Package businessflow contains the core business logic for the outreach pipeline
package businessflow

import (
	"context"
	"encoding/json"

	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/repository"
)

// AgentContext identifies the tenant scope of a pipeline run. It is resolved
// by the host (auth is external to this service) and passed in explicitly.
// ProviderAccountID optionally pins the run to one of the user's active
// linked accounts; when empty, exactly one active account must exist.
type AgentContext struct {
	UserID            uint   `json:"user_id"`
	ProviderAccountID string `json:"provider_account_id"`
}

// RunContext is the fully resolved input of one pipeline run: the campaign,
// the agent scope, and the owner's settings. Settings are resolved once per
// run so autopilot cannot flip mid-run.
type RunContext struct {
	Campaign *models.Campaign
	Agent    AgentContext
	Settings *models.UserSettings
}

// AutopilotEnabled reports the owner's autopilot flag; absent settings mean
// manual mode.
func (rc *RunContext) AutopilotEnabled() bool {
	return rc.Settings != nil && rc.Settings.AutopilotEnabled
}

// logActivity appends one activity log entry. Best-effort: the pipeline never
// rolls back an action because its log write failed.
func logActivity(ctx context.Context, repo repository.ActivityLogRepository, userID uint, campaignID, prospectID *uint, activity string, metadata map[string]any) {
	var raw json.RawMessage
	if metadata != nil {
		raw, _ = json.Marshal(metadata)
	}
	_ = repo.Save(ctx, &models.ActivityLog{
		UserID:     userID,
		CampaignID: campaignID,
		ProspectID: prospectID,
		Activity:   activity,
		Metadata:   raw,
	})
}
