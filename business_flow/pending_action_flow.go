package businessflow

import (
	"context"
	"errors"

	"github.com/apexhq/outreach-engine/app/services"
	"github.com/apexhq/outreach-engine/metrics"
	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/repository"
	"github.com/apexhq/outreach-engine/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingActionFlow handles human approval of deferred outreach actions
type PendingActionFlow interface {
	ListActionable(ctx context.Context, agent AgentContext, page, pageSize int) ([]*models.PendingAction, int64, error)
	Approve(ctx context.Context, agent AgentContext, actionUUID uuid.UUID) error
	Deny(ctx context.Context, agent AgentContext, actionUUID uuid.UUID) error
	ApproveAll(ctx context.Context, agent AgentContext) (int, error)
	DenyAll(ctx context.Context, agent AgentContext) (int, error)
	ExpireOld(ctx context.Context) (int64, error)
}

// NewPendingActionFlow creates a pending action flow. It shares its
// implementation with the outreach flow so approved actions execute with
// exactly the autopilot transitions.
func NewPendingActionFlow(
	campaignRepo repository.CampaignRepository,
	prospectRepo repository.ProspectRepository,
	linkRepo repository.CampaignProspectRepository,
	pendingRepo repository.PendingActionRepository,
	activityRepo repository.ActivityLogRepository,
	settingsRepo repository.UserSettingsRepository,
	accountRepo repository.LinkedAccountRepository,
	credentials *services.CredentialStore,
	newClient MessagingClientFactory,
	db *gorm.DB,
) PendingActionFlow {
	return &OutreachFlowImpl{
		campaignRepo: campaignRepo,
		prospectRepo: prospectRepo,
		linkRepo:     linkRepo,
		pendingRepo:  pendingRepo,
		activityRepo: activityRepo,
		settingsRepo: settingsRepo,
		accountRepo:  accountRepo,
		credentials:  credentials,
		newClient:    newClient,
		db:           db,
	}
}

// ListActionable returns the agent's open pending actions, newest first
func (s *OutreachFlowImpl) ListActionable(ctx context.Context, agent AgentContext, page, pageSize int) ([]*models.PendingAction, int64, error) {
	if page < 1 {
		return nil, 0, NewBusinessError("INVALID_PAGE", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, 0, NewBusinessError("INVALID_PAGE_SIZE", "Invalid page size", ErrInvalidPageSize)
	}

	now := utils.UTCNow()
	actions, err := s.pendingRepo.ListActionable(ctx, agent.UserID, now, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, NewBusinessError("PENDING_ACTION_LIST_FAILED", "Failed to list pending actions", err)
	}

	status := models.PendingActionStatusPending
	total, err := s.pendingRepo.Count(ctx, models.PendingActionFilter{
		UserID:       &agent.UserID,
		Status:       &status,
		ExpiresAfter: &now,
	})
	if err != nil {
		return nil, 0, NewBusinessError("PENDING_ACTION_COUNT_FAILED", "Failed to count pending actions", err)
	}

	return actions, total, nil
}

// Approve executes a pending action with the same state transitions the
// autopilot path applies. A failed follow-up delivery leaves the action
// pending so approval can be retried; a failed connection request is
// terminal for the prospect link, matching the send path.
func (s *OutreachFlowImpl) Approve(ctx context.Context, agent AgentContext, actionUUID uuid.UUID) error {
	action, err := s.loadActionable(ctx, agent, actionUUID)
	if err != nil {
		return err
	}

	campaign, err := s.campaignRepo.ByID(ctx, action.CampaignID)
	if err != nil {
		return NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	prospect, err := s.prospectRepo.ByID(ctx, action.ProspectID)
	if err != nil {
		return NewBusinessError("PROSPECT_LOOKUP_FAILED", "Failed to lookup prospect", err)
	}
	if prospect == nil || prospect.ExternalProfileID == "" {
		return NewBusinessError("PROSPECT_PROFILE_MISSING", "Prospect has no external profile id", ErrProspectProfileMissing)
	}

	link, err := s.linkRepo.ByCampaignAndProspect(ctx, action.CampaignID, action.ProspectID)
	if err != nil {
		return NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup campaign prospect", err)
	}
	if link == nil || link.Status.IsTerminal() {
		// The prospect moved on (replied or failed) while the action waited.
		if err := s.resolveAction(ctx, action, models.PendingActionStatusExpired); err != nil {
			return err
		}
		return NewBusinessError("PENDING_ACTION_STALE", "Pending action no longer applies", ErrPendingActionNotActionable)
	}

	client, account, err := s.resolveClient(ctx, agent)
	if err != nil {
		return err
	}

	switch action.ActionType {
	case models.PendingActionTypeSendConnection:
		if sendErr := client.SendConnectionRequest(ctx, account.ProviderAccountID, prospect.ExternalProfileID, action.Message); sendErr != nil {
			if err := s.failLink(ctx, link, sendErr.Error()); err != nil {
				return err
			}
		} else {
			if err := s.markConnectionSent(ctx, campaign, link, prospect); err != nil {
				return err
			}
		}
	case models.PendingActionTypeSendFollowUp:
		if err := deliverFollowUp(ctx, client, account.ProviderAccountID, prospect.ExternalProfileID, action.Message); err != nil {
			return NewBusinessError("FOLLOW_UP_SEND_FAILED", "Failed to send approved follow-up", err)
		}
		step := action.Metadata.FollowUpStep
		if step < 1 {
			step = link.FollowUpCount + 1
		}
		if err := s.markFollowUpSent(ctx, campaign, link, prospect, step); err != nil {
			return err
		}
	default:
		return NewBusinessErrorf("UNKNOWN_ACTION_TYPE", "Unknown pending action type %q", nil, action.ActionType)
	}

	if err := s.resolveAction(ctx, action, models.PendingActionStatusApproved); err != nil {
		return err
	}

	logActivity(ctx, s.activityRepo, action.UserID, &action.CampaignID, &action.ProspectID, models.ActivityPendingActionApproved, map[string]any{
		"action_type": action.ActionType.String(),
	})
	return nil
}

// Deny rejects a pending action. A denied connection request marks the link
// failed and a denied follow-up stops the sequence; otherwise the dispatcher
// would recreate the same action next cycle.
func (s *OutreachFlowImpl) Deny(ctx context.Context, agent AgentContext, actionUUID uuid.UUID) error {
	action, err := s.loadActionable(ctx, agent, actionUUID)
	if err != nil {
		return err
	}

	link, err := s.linkRepo.ByCampaignAndProspect(ctx, action.CampaignID, action.ProspectID)
	if err != nil {
		return NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup campaign prospect", err)
	}
	if link != nil && !link.Status.IsTerminal() {
		switch action.ActionType {
		case models.PendingActionTypeSendConnection:
			if err := s.failLink(ctx, link, "connection request denied"); err != nil {
				return err
			}
		case models.PendingActionTypeSendFollowUp:
			link.NextFollowUpAt = nil
			if err := link.BeforeUpdate(); err != nil {
				return NewBusinessError("FOLLOW_UP_STATE_UPDATE_FAILED", "Failed to clear follow-up schedule", err)
			}
			if err := s.linkRepo.Update(ctx, link); err != nil {
				return NewBusinessError("FOLLOW_UP_STATE_UPDATE_FAILED", "Failed to clear follow-up schedule", err)
			}
		}
	}

	if err := s.resolveAction(ctx, action, models.PendingActionStatusDenied); err != nil {
		return err
	}

	logActivity(ctx, s.activityRepo, action.UserID, &action.CampaignID, &action.ProspectID, models.ActivityPendingActionDenied, map[string]any{
		"action_type": action.ActionType.String(),
	})
	return nil
}

// ApproveAll approves every open action of the agent, stopping at the first
// infrastructure error. Individual delivery failures do not stop the sweep.
func (s *OutreachFlowImpl) ApproveAll(ctx context.Context, agent AgentContext) (int, error) {
	return s.resolveAll(ctx, agent, s.Approve)
}

// DenyAll denies every open action of the agent
func (s *OutreachFlowImpl) DenyAll(ctx context.Context, agent AgentContext) (int, error) {
	return s.resolveAll(ctx, agent, s.Deny)
}

func (s *OutreachFlowImpl) resolveAll(ctx context.Context, agent AgentContext, resolve func(context.Context, AgentContext, uuid.UUID) error) (int, error) {
	now := utils.UTCNow()
	actions, err := s.pendingRepo.ListActionable(ctx, agent.UserID, now, 0, 0)
	if err != nil {
		return 0, NewBusinessError("PENDING_ACTION_LIST_FAILED", "Failed to list pending actions", err)
	}

	resolved := 0
	for _, action := range actions {
		if err := resolve(ctx, agent, action.UUID); err != nil {
			if IsPendingActionNotActionable(err) || errors.Is(err, ErrFollowUpSendFailed) {
				continue
			}
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}

// ExpireOld sweeps pending actions past their expiry into expired state
func (s *OutreachFlowImpl) ExpireOld(ctx context.Context) (int64, error) {
	expired, err := s.pendingRepo.ExpireOldActions(ctx, utils.UTCNow())
	if err != nil {
		return 0, NewBusinessError("PENDING_ACTION_EXPIRE_FAILED", "Failed to expire pending actions", err)
	}
	if expired > 0 {
		metrics.PendingActionsExpiredTotal.Add(float64(expired))
	}
	return expired, nil
}

// loadActionable fetches an action by UUID and verifies ownership and state
func (s *OutreachFlowImpl) loadActionable(ctx context.Context, agent AgentContext, actionUUID uuid.UUID) (*models.PendingAction, error) {
	action, err := s.pendingRepo.ByUUID(ctx, actionUUID.String())
	if err != nil {
		return nil, NewBusinessError("PENDING_ACTION_LOOKUP_FAILED", "Failed to lookup pending action", err)
	}
	if action == nil {
		return nil, NewBusinessError("PENDING_ACTION_NOT_FOUND", "Pending action not found", ErrPendingActionNotFound)
	}
	if action.UserID != agent.UserID {
		return nil, NewBusinessError("PENDING_ACTION_ACCESS_DENIED", "Pending action does not belong to agent", ErrCampaignAccessDenied)
	}
	if !action.IsActionable(utils.UTCNow()) {
		return nil, NewBusinessError("PENDING_ACTION_NOT_ACTIONABLE", "Pending action is not actionable", ErrPendingActionNotActionable)
	}
	return action, nil
}

// resolveAction finalizes an action. Approved actions are written as executed
// since execution has already happened by the time they are persisted.
func (s *OutreachFlowImpl) resolveAction(ctx context.Context, action *models.PendingAction, decision models.PendingActionStatus) error {
	if !action.Status.CanTransitionTo(decision) {
		return NewBusinessErrorf("INVALID_ACTION_TRANSITION", "Cannot move pending action from %s to %s", ErrPendingActionNotActionable, action.Status, decision)
	}

	now := utils.UTCNow()
	action.Status = decision
	if decision == models.PendingActionStatusApproved {
		action.Status = models.PendingActionStatusExecuted
	}
	action.ResolvedAt = &now
	if err := action.BeforeUpdate(); err != nil {
		return NewBusinessError("PENDING_ACTION_UPDATE_FAILED", "Failed to resolve pending action", err)
	}
	if err := s.pendingRepo.Update(ctx, action); err != nil {
		return NewBusinessError("PENDING_ACTION_UPDATE_FAILED", "Failed to resolve pending action", err)
	}
	return nil
}

// resolveClient opens the agent's messaging credential and builds a client
func (s *OutreachFlowImpl) resolveClient(ctx context.Context, agent AgentContext) (services.MessagingClient, *models.LinkedAccount, error) {
	accounts, err := s.accountRepo.ListActiveByUser(ctx, agent.UserID)
	if err != nil {
		return nil, nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup linked accounts", err)
	}
	account := selectLinkedAccount(accounts, agent)
	if account == nil {
		return nil, nil, NewBusinessError("NO_ACTIVE_LINKED_ACCOUNT", "No single active linked account", ErrNoActiveLinkedAccount)
	}

	apiKey, err := s.credentials.Open(account.EncryptedCredential)
	if err != nil {
		return nil, nil, NewBusinessError("CREDENTIAL_UNUSABLE", "Messaging credential could not be opened", ErrCredentialUnusable)
	}

	client := s.newClient(apiKey)
	if !client.IsConfigured(ctx) {
		return nil, nil, NewBusinessError("MESSAGING_NOT_CONFIGURED", "Messaging client is not configured", ErrMessagingNotConfigured)
	}
	return client, account, nil
}
