package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/apexhq/outreach-engine/app/services"
	"github.com/apexhq/outreach-engine/metrics"
	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/repository"
	"github.com/apexhq/outreach-engine/utils"
	"gorm.io/gorm"
)

// OutreachFlow runs the per-campaign pipeline: guard, engagement sync,
// discovery, connection dispatch, follow-up dispatch.
type OutreachFlow interface {
	RunPipeline(ctx context.Context, campaignID uint, agent AgentContext) (*PipelineRunSummary, error)
}

// PipelineRunSummary reports what a single run did
type PipelineRunSummary struct {
	CampaignID            uint   `json:"campaign_id"`
	Skipped               bool   `json:"skipped"`
	SkipReason            string `json:"skip_reason,omitempty"`
	ProspectsDiscovered   int    `json:"prospects_discovered"`
	ConnectionsSent       int    `json:"connections_sent"`
	FollowUpsSent         int    `json:"follow_ups_sent"`
	PendingActionsCreated int    `json:"pending_actions_created"`
	AcceptancesDetected   int    `json:"acceptances_detected"`
	RepliesDetected       int    `json:"replies_detected"`
	Completed             bool   `json:"completed"`
}

// RunLocker provides per-campaign mutual exclusion for the duration of a run
type RunLocker interface {
	Acquire(ctx context.Context, campaignID uint) (func(), error)
}

// MessagingClientFactory builds a provider client bound to an opened
// credential
type MessagingClientFactory func(apiKey string) services.MessagingClient

// OutreachFlowImpl implements the outreach pipeline
type OutreachFlowImpl struct {
	campaignRepo repository.CampaignRepository
	prospectRepo repository.ProspectRepository
	linkRepo     repository.CampaignProspectRepository
	pendingRepo  repository.PendingActionRepository
	activityRepo repository.ActivityLogRepository
	settingsRepo repository.UserSettingsRepository
	accountRepo  repository.LinkedAccountRepository

	credentials *services.CredentialStore
	newClient   MessagingClientFactory
	locker      RunLocker
	db          *gorm.DB
}

// NewOutreachFlow creates a new outreach pipeline flow instance
func NewOutreachFlow(
	campaignRepo repository.CampaignRepository,
	prospectRepo repository.ProspectRepository,
	linkRepo repository.CampaignProspectRepository,
	pendingRepo repository.PendingActionRepository,
	activityRepo repository.ActivityLogRepository,
	settingsRepo repository.UserSettingsRepository,
	accountRepo repository.LinkedAccountRepository,
	credentials *services.CredentialStore,
	newClient MessagingClientFactory,
	locker RunLocker,
	db *gorm.DB,
) OutreachFlow {
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
		locker:       locker,
		db:           db,
	}
}

// withTransaction wraps fn in a database transaction when a handle is
// configured; unit tests with in-memory repositories run fn directly.
func (s *OutreachFlowImpl) withTransaction(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

// RunPipeline executes one full pipeline cycle for a campaign. Skip
// conditions return a summary with Skipped set and no error; only phase
// failures (and infrastructure errors) surface as errors.
func (s *OutreachFlowImpl) RunPipeline(ctx context.Context, campaignID uint, agent AgentContext) (*PipelineRunSummary, error) {
	start := utils.UTCNow()
	summary := &PipelineRunSummary{CampaignID: campaignID}

	release, err := s.locker.Acquire(ctx, campaignID)
	if err != nil {
		if IsCampaignRunInProgress(err) {
			metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeLocked).Inc()
			summary.Skipped = true
			summary.SkipReason = "run already in progress"
			return summary, nil
		}
		return nil, NewBusinessError("RUN_LOCK_FAILED", "Failed to acquire campaign run lock", err)
	}
	defer release()

	runCtx, client, account, skipReason, err := s.guard(ctx, campaignID, agent)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeFailed).Inc()
		return nil, err
	}
	if skipReason != "" {
		metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeSkipped).Inc()
		summary.Skipped = true
		summary.SkipReason = skipReason
		return summary, nil
	}

	// Engagement sync is best-effort: a provider hiccup here must not block
	// discovery and dispatch.
	if err := s.syncEngagement(ctx, runCtx, client, account, summary); err != nil {
		metrics.PhaseFailuresTotal.WithLabelValues("sync").Inc()
	}

	if err := s.discoverProspects(ctx, runCtx, client, account, summary); err != nil {
		metrics.PhaseFailuresTotal.WithLabelValues("discovery").Inc()
		metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeFailed).Inc()
		return summary, err
	}

	if err := s.dispatchConnections(ctx, runCtx, client, account, summary); err != nil {
		metrics.PhaseFailuresTotal.WithLabelValues("connections").Inc()
		metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeFailed).Inc()
		return summary, err
	}

	if err := s.sendFollowUps(ctx, runCtx, client, account, summary); err != nil {
		metrics.PhaseFailuresTotal.WithLabelValues("follow_ups").Inc()
		metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeFailed).Inc()
		return summary, err
	}

	completed, err := s.autoCompleteIfDone(ctx, runCtx)
	if err == nil && completed {
		summary.Completed = true
	}

	metrics.PipelineRunsTotal.WithLabelValues(metrics.RunOutcomeCompleted).Inc()
	metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
	return summary, nil
}

// guard verifies campaign status, the linked account, and the messaging
// credential. Every failure here is a skip, not an error: campaigns are
// polled on a schedule and transient disconnection self-heals on the next
// poll.
func (s *OutreachFlowImpl) guard(ctx context.Context, campaignID uint, agent AgentContext) (*RunContext, services.MessagingClient, *models.LinkedAccount, string, error) {
	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return nil, nil, nil, "", NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, nil, nil, "", NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if campaign.UserID != agent.UserID {
		return nil, nil, nil, "", NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign does not belong to agent", ErrCampaignAccessDenied)
	}

	if !campaign.IsProcessable() {
		return nil, nil, nil, "campaign not active", nil
	}

	accounts, err := s.accountRepo.ListActiveByUser(ctx, campaign.UserID)
	if err != nil {
		return nil, nil, nil, "", NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup linked accounts", err)
	}
	account := selectLinkedAccount(accounts, agent)
	if account == nil {
		return nil, nil, nil, "no single active linked account", nil
	}

	apiKey, err := s.credentials.Open(account.EncryptedCredential)
	if err != nil {
		// A credential that cannot be opened means unconfigured, not a crash.
		return nil, nil, nil, "messaging credential unusable", nil
	}

	client := s.newClient(apiKey)
	if !client.IsConfigured(ctx) {
		return nil, nil, nil, "messaging client not configured", nil
	}

	settings, err := s.settingsRepo.ByUserID(ctx, campaign.UserID)
	if err != nil {
		return nil, nil, nil, "", NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to lookup user settings", err)
	}

	runCtx := &RunContext{
		Campaign: campaign,
		Agent:    agent,
		Settings: settings,
	}
	return runCtx, client, account, "", nil
}

// selectLinkedAccount resolves which linked account a run sends through. An
// agent may pin a specific provider account id; without a pin exactly one
// active account must exist.
func selectLinkedAccount(accounts []*models.LinkedAccount, agent AgentContext) *models.LinkedAccount {
	if agent.ProviderAccountID != "" {
		for _, account := range accounts {
			if account.ProviderAccountID == agent.ProviderAccountID {
				return account
			}
		}
		return nil
	}
	if len(accounts) == 1 {
		return accounts[0]
	}
	return nil
}

// discoverProspects queries the provider for new prospects matching the
// campaign targeting and links them to the campaign in queued state.
func (s *OutreachFlowImpl) discoverProspects(ctx context.Context, rc *RunContext, client services.MessagingClient, account *models.LinkedAccount, summary *PipelineRunSummary) error {
	campaign := rc.Campaign

	filters, ok := BuildSearchFilters(campaign)
	if !ok {
		// Nothing meaningful to search for this cycle.
		return nil
	}

	limit := campaign.DailyConnectionLimit
	if limit > utils.MaxSearchResultsPerCycle {
		limit = utils.MaxSearchResultsPerCycle
	}

	results, err := client.SearchProfiles(ctx, account.ProviderAccountID, filters, limit)
	if err != nil {
		return NewBusinessError("DISCOVERY_SEARCH_FAILED", "Prospect discovery search failed", fmt.Errorf("%w: %v", ErrDiscoverySearchFailed, err))
	}

	discovered := 0
	for _, result := range results {
		if result.ExternalID == "" {
			continue
		}

		err := s.withTransaction(ctx, func(txCtx context.Context) error {
			prospect, err := s.prospectRepo.ByExternalProfileID(txCtx, campaign.UserID, result.ExternalID)
			if err != nil {
				return err
			}
			if prospect == nil {
				prospect = &models.Prospect{
					UserID:            campaign.UserID,
					ExternalProfileID: result.ExternalID,
					FullName:          result.Name,
					Company:           result.Company,
					JobTitle:          result.JobTitle,
					Location:          result.Location,
					AvatarURL:         result.AvatarURL,
					ConnectionStatus:  models.ProspectConnectionStatusNone,
				}
				if err := prospect.BeforeCreate(); err != nil {
					return err
				}
				if err := s.prospectRepo.Save(txCtx, prospect); err != nil {
					return err
				}
			}

			existing, err := s.linkRepo.ByCampaignAndProspect(txCtx, campaign.ID, prospect.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				// Already linked; the pair is unique.
				return nil
			}

			link := &models.CampaignProspect{
				CampaignID: campaign.ID,
				ProspectID: prospect.ID,
				Status:     models.CampaignProspectStatusQueued,
			}
			if err := link.BeforeCreate(); err != nil {
				return err
			}
			if err := s.linkRepo.Save(txCtx, link); err != nil {
				return err
			}
			discovered++
			return nil
		})
		if err != nil {
			return NewBusinessError("DISCOVERY_PERSIST_FAILED", "Failed to persist discovered prospect", err)
		}
	}

	if discovered > 0 {
		logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, nil, models.ActivityProspectsDiscovered, map[string]any{
			"count": discovered,
		})
		metrics.ProspectsDiscoveredTotal.Add(float64(discovered))
	}
	summary.ProspectsDiscovered = discovered
	return nil
}

// dispatchConnections sends connection requests to queued prospects up to
// the remaining daily quota, or defers to pending actions in manual mode.
func (s *OutreachFlowImpl) dispatchConnections(ctx context.Context, rc *RunContext, client services.MessagingClient, account *models.LinkedAccount, summary *PipelineRunSummary) error {
	campaign := rc.Campaign
	todayStart := utils.TodayStartUTC()

	links, err := s.linkRepo.ListQueued(ctx, campaign.ID, 0)
	if err != nil {
		return NewBusinessError("QUEUED_LOOKUP_FAILED", "Failed to list queued prospects", err)
	}

	// Manual mode leaves the stored count untouched, so deferred approvals
	// consume the day's quota the same way sends do; otherwise a single cycle
	// would select every queued row.
	deferred := 0
	for _, link := range links {
		// Quota is re-derived from the store before every send decision so it
		// stays authoritative across overlapping days and restarts.
		sentToday, err := s.linkRepo.CountConnectionsSentSince(ctx, campaign.ID, todayStart)
		if err != nil {
			return NewBusinessError("QUOTA_COUNT_FAILED", "Failed to count connections sent today", err)
		}
		if sentToday+int64(deferred) >= int64(campaign.DailyConnectionLimit) {
			break
		}

		prospect := link.Prospect
		if prospect == nil {
			p, err := s.prospectRepo.ByID(ctx, link.ProspectID)
			if err != nil {
				return NewBusinessError("PROSPECT_LOOKUP_FAILED", "Failed to lookup prospect", err)
			}
			prospect = p
		}

		if prospect == nil || prospect.ExternalProfileID == "" {
			if err := s.failLink(ctx, link, ErrProspectProfileMissing.Error()); err != nil {
				return err
			}
			continue
		}

		if !rc.AutopilotEnabled() {
			if err := s.createPendingAction(ctx, rc, link, prospect, models.PendingActionTypeSendConnection, campaign.ConnectionMessage, 0); err != nil {
				return err
			}
			deferred++
			summary.PendingActionsCreated++
			continue
		}

		if err := client.SendConnectionRequest(ctx, account.ProviderAccountID, prospect.ExternalProfileID, campaign.ConnectionMessage); err != nil {
			// A failed connection request is terminal for this link:
			// re-sending an invitation to the same person is not safe.
			if err := s.failLink(ctx, link, err.Error()); err != nil {
				return err
			}
			continue
		}

		if err := s.markConnectionSent(ctx, campaign, link, prospect); err != nil {
			return err
		}
		summary.ConnectionsSent++
	}

	return nil
}

// markConnectionSent advances the link, the prospect, and the campaign
// counter after a successful connection request
func (s *OutreachFlowImpl) markConnectionSent(ctx context.Context, campaign *models.Campaign, link *models.CampaignProspect, prospect *models.Prospect) error {
	now := utils.UTCNow()

	err := s.withTransaction(ctx, func(txCtx context.Context) error {
		if err := link.TransitionTo(models.CampaignProspectStatusConnectionSent); err != nil {
			return err
		}
		link.ConnectionSentAt = &now
		if err := link.BeforeUpdate(); err != nil {
			return err
		}
		if err := s.linkRepo.Update(txCtx, link); err != nil {
			return err
		}

		if err := s.prospectRepo.UpdateConnectionStatus(txCtx, prospect.ID, models.ProspectConnectionStatusPending); err != nil {
			return err
		}

		return s.campaignRepo.IncrementCounter(txCtx, campaign.ID, "connections_sent", 1)
	})
	if err != nil {
		return NewBusinessError("CONNECTION_STATE_UPDATE_FAILED", "Failed to record sent connection", err)
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, &link.ProspectID, models.ActivityConnectionSent, map[string]any{
		"prospect_name": prospect.FullName,
	})
	metrics.ConnectionsSentTotal.Inc()
	return nil
}

// sendFollowUps delivers the next due follow-up to accepted prospects up to
// the remaining daily message quota.
func (s *OutreachFlowImpl) sendFollowUps(ctx context.Context, rc *RunContext, client services.MessagingClient, account *models.LinkedAccount, summary *PipelineRunSummary) error {
	campaign := rc.Campaign
	now := utils.UTCNow()
	todayStart := utils.TodayStartUTC()

	links, err := s.linkRepo.ListDueFollowUps(ctx, campaign.ID, now, 0)
	if err != nil {
		return NewBusinessError("FOLLOW_UP_LOOKUP_FAILED", "Failed to list due follow-ups", err)
	}

	// Same discipline as the connection dispatch: deferred approvals count
	// against the message quota.
	deferred := 0
	for _, link := range links {
		sentToday, err := s.linkRepo.CountMessagesSentSince(ctx, campaign.ID, todayStart)
		if err != nil {
			return NewBusinessError("QUOTA_COUNT_FAILED", "Failed to count messages sent today", err)
		}
		if sentToday+int64(deferred) >= int64(campaign.DailyMessageLimit) {
			break
		}

		step := link.FollowUpCount + 1
		template := campaign.FollowUpTemplate(step)
		if template == "" {
			// Sequence exhausted: nothing further to schedule for this link.
			link.NextFollowUpAt = nil
			if err := link.BeforeUpdate(); err != nil {
				return NewBusinessError("FOLLOW_UP_STATE_UPDATE_FAILED", "Failed to clear follow-up schedule", err)
			}
			if err := s.linkRepo.Update(ctx, link); err != nil {
				return NewBusinessError("FOLLOW_UP_STATE_UPDATE_FAILED", "Failed to clear follow-up schedule", err)
			}
			continue
		}

		prospect := link.Prospect
		if prospect == nil {
			p, err := s.prospectRepo.ByID(ctx, link.ProspectID)
			if err != nil {
				return NewBusinessError("PROSPECT_LOOKUP_FAILED", "Failed to lookup prospect", err)
			}
			prospect = p
		}
		if prospect == nil || prospect.ExternalProfileID == "" {
			continue
		}

		if !rc.AutopilotEnabled() {
			if err := s.createPendingAction(ctx, rc, link, prospect, models.PendingActionTypeSendFollowUp, template, step); err != nil {
				return err
			}
			deferred++
			summary.PendingActionsCreated++
			continue
		}

		if err := deliverFollowUp(ctx, client, account.ProviderAccountID, prospect.ExternalProfileID, template); err != nil {
			// The message was not delivered; leave the link untouched so the
			// same step is retried next cycle.
			continue
		}

		if err := s.markFollowUpSent(ctx, campaign, link, prospect, step); err != nil {
			return err
		}
		summary.FollowUpsSent++
	}

	return nil
}

// deliverFollowUp resolves the prospect's chat and sends the message,
// opening a new chat with the message as its first content when none exists
func deliverFollowUp(ctx context.Context, client services.MessagingClient, accountID, externalProfileID, message string) error {
	chats, err := client.GetChats(ctx, accountID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFollowUpSendFailed, err)
	}

	chatID := ""
	for _, chat := range chats {
		for _, attendee := range chat.Attendees {
			if attendee.ExternalProfileID == externalProfileID {
				chatID = chat.ID
				break
			}
		}
		if chatID != "" {
			break
		}
	}

	if chatID == "" {
		chatID, err = client.StartChat(ctx, accountID, externalProfileID, message)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFollowUpSendFailed, err)
		}
	}

	if err := client.SendMessage(ctx, chatID, message); err != nil {
		return fmt.Errorf("%w: %v", ErrFollowUpSendFailed, err)
	}
	return nil
}

// markFollowUpSent records a delivered follow-up step and schedules the next
// one, or clears the schedule when the sequence is finished
func (s *OutreachFlowImpl) markFollowUpSent(ctx context.Context, campaign *models.Campaign, link *models.CampaignProspect, prospect *models.Prospect, step int) error {
	now := utils.UTCNow()

	err := s.withTransaction(ctx, func(txCtx context.Context) error {
		if err := link.TransitionTo(models.CampaignProspectStatusMessageSent); err != nil {
			return err
		}
		link.FollowUpCount = step
		link.LastMessageSentAt = &now

		nextStep := step + 1
		if nextStep <= utils.MaxFollowUpSteps && campaign.FollowUpTemplate(nextStep) != "" {
			next := now.AddDate(0, 0, campaign.FollowUpDelayDays(nextStep))
			link.NextFollowUpAt = &next
		} else {
			link.NextFollowUpAt = nil
		}

		if err := link.BeforeUpdate(); err != nil {
			return err
		}
		if err := s.linkRepo.Update(txCtx, link); err != nil {
			return err
		}

		return s.campaignRepo.IncrementCounter(txCtx, campaign.ID, "messages_sent", 1)
	})
	if err != nil {
		return NewBusinessError("FOLLOW_UP_STATE_UPDATE_FAILED", "Failed to record sent follow-up", err)
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, &link.ProspectID, models.ActivityFollowUpSent, map[string]any{
		"prospect_name": prospect.FullName,
		"step":          step,
	})
	metrics.FollowUpsSentTotal.Inc()
	return nil
}

// failLink marks a campaign prospect link failed with the given reason
func (s *OutreachFlowImpl) failLink(ctx context.Context, link *models.CampaignProspect, reason string) error {
	if err := link.TransitionTo(models.CampaignProspectStatusFailed); err != nil {
		return NewBusinessError("LINK_FAIL_UPDATE_FAILED", "Failed to mark campaign prospect failed", err)
	}
	link.FailureReason = &reason
	if err := link.BeforeUpdate(); err != nil {
		return NewBusinessError("LINK_FAIL_UPDATE_FAILED", "Failed to mark campaign prospect failed", err)
	}
	if err := s.linkRepo.Update(ctx, link); err != nil {
		return NewBusinessError("LINK_FAIL_UPDATE_FAILED", "Failed to mark campaign prospect failed", err)
	}
	return nil
}

// createPendingAction defers an outreach action to human approval. The link
// is not advanced; the human decision gates the state change.
func (s *OutreachFlowImpl) createPendingAction(ctx context.Context, rc *RunContext, link *models.CampaignProspect, prospect *models.Prospect, actionType models.PendingActionType, message string, step int) error {
	campaign := rc.Campaign

	// One open action per (link, type) at a time; the dispatcher revisits
	// queued links every cycle and must not pile up duplicates.
	status := models.PendingActionStatusPending
	exists, err := s.pendingRepo.Exists(ctx, models.PendingActionFilter{
		CampaignID: &campaign.ID,
		ProspectID: &prospect.ID,
		ActionType: &actionType,
		Status:     &status,
	})
	if err != nil {
		return NewBusinessError("PENDING_ACTION_LOOKUP_FAILED", "Failed to check existing pending action", err)
	}
	if exists {
		return nil
	}

	expiresAt := utils.UTCNowAdd(utils.PendingActionTTL)
	action := &models.PendingAction{
		UserID:     campaign.UserID,
		CampaignID: campaign.ID,
		ProspectID: prospect.ID,
		ActionType: actionType,
		Message:    message,
		Status:     models.PendingActionStatusPending,
		ExpiresAt:  &expiresAt,
		Metadata: models.PendingActionMetadata{
			CampaignName: campaign.Name,
			ProspectName: prospect.FullName,
			FollowUpStep: step,
		},
	}
	if err := action.BeforeCreate(); err != nil {
		return NewBusinessError("PENDING_ACTION_CREATE_FAILED", "Failed to create pending action", err)
	}
	if err := s.pendingRepo.Save(ctx, action); err != nil {
		return NewBusinessError("PENDING_ACTION_CREATE_FAILED", "Failed to create pending action", err)
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, &prospect.ID, models.ActivityPendingActionCreated, map[string]any{
		"action_type": actionType.String(),
	})
	metrics.PendingActionsCreatedTotal.WithLabelValues(actionType.String()).Inc()
	return nil
}

// autoCompleteIfDone transitions an active campaign to completed once no
// live links, no scheduled follow-ups, and no pending actions remain
func (s *OutreachFlowImpl) autoCompleteIfDone(ctx context.Context, rc *RunContext) (bool, error) {
	campaign := rc.Campaign
	if campaign.Status != models.CampaignStatusActive {
		return false, nil
	}

	total, err := s.linkRepo.Count(ctx, models.CampaignProspectFilter{CampaignID: &campaign.ID})
	if err != nil || total == 0 {
		return false, err
	}

	live, err := s.linkRepo.CountInStatuses(ctx, campaign.ID, []models.CampaignProspectStatus{
		models.CampaignProspectStatusQueued,
		models.CampaignProspectStatusConnectionSent,
	})
	if err != nil || live > 0 {
		return false, err
	}

	scheduled, err := s.linkRepo.CountScheduledFollowUps(ctx, campaign.ID)
	if err != nil || scheduled > 0 {
		return false, err
	}

	pending, err := s.pendingRepo.CountPendingByCampaign(ctx, campaign.ID)
	if err != nil || pending > 0 {
		return false, err
	}

	now := utils.UTCNow()
	campaign.Status = models.CampaignStatusCompleted
	campaign.CompletedAt = &now
	if err := campaign.BeforeUpdate(); err != nil {
		return false, err
	}
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return false, err
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, nil, models.ActivityCampaignCompleted, nil)
	return true, nil
}
