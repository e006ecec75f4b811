package businessflow

import (
	"context"
	"fmt"

	"github.com/apexhq/outreach-engine/app/services"
	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/utils"
)

// Engagement sync reconciles local state with what happened on the provider
// since the last cycle: invitations that were accepted and prospects that
// wrote back. It runs before dispatch so a reply detected this cycle stops
// further follow-ups to that prospect in the same cycle.

func (s *OutreachFlowImpl) syncEngagement(ctx context.Context, rc *RunContext, client services.MessagingClient, account *models.LinkedAccount, summary *PipelineRunSummary) error {
	campaign := rc.Campaign

	chats, err := client.GetChats(ctx, account.ProviderAccountID)
	if err != nil {
		return fmt.Errorf("engagement sync: %w", err)
	}

	chatByProfile := make(map[string]services.Chat, len(chats))
	for _, chat := range chats {
		for _, attendee := range chat.Attendees {
			if attendee.ExternalProfileID != "" {
				chatByProfile[attendee.ExternalProfileID] = chat
			}
		}
	}

	links, err := s.linkRepo.ListTracked(ctx, campaign.ID)
	if err != nil {
		return fmt.Errorf("engagement sync: %w", err)
	}

	for _, link := range links {
		prospect := link.Prospect
		if prospect == nil {
			p, err := s.prospectRepo.ByID(ctx, link.ProspectID)
			if err != nil {
				return fmt.Errorf("engagement sync: %w", err)
			}
			prospect = p
		}
		if prospect == nil || prospect.ExternalProfileID == "" {
			continue
		}

		chat, ok := chatByProfile[prospect.ExternalProfileID]
		if !ok {
			continue
		}

		// A chat with the prospect means the invitation went through.
		if link.Status == models.CampaignProspectStatusConnectionSent {
			if err := s.markConnectionAccepted(ctx, campaign, link, prospect); err != nil {
				return err
			}
			summary.AcceptancesDetected++
		}

		replied, err := s.detectReply(ctx, client, chat.ID, prospect.ExternalProfileID)
		if err != nil {
			// One unreadable chat must not abort the whole sweep.
			continue
		}
		if replied {
			if err := s.markReplied(ctx, campaign, link, prospect); err != nil {
				return err
			}
			summary.RepliesDetected++
		}
	}

	return nil
}

// detectReply reports whether the prospect has written anything in the chat
func (s *OutreachFlowImpl) detectReply(ctx context.Context, client services.MessagingClient, chatID, externalProfileID string) (bool, error) {
	messages, err := client.GetChatMessages(ctx, chatID)
	if err != nil {
		return false, err
	}
	for _, message := range messages {
		if message.SenderID == externalProfileID {
			return true, nil
		}
	}
	return false, nil
}

// markConnectionAccepted promotes a sent invitation to accepted and schedules
// the first follow-up
func (s *OutreachFlowImpl) markConnectionAccepted(ctx context.Context, campaign *models.Campaign, link *models.CampaignProspect, prospect *models.Prospect) error {
	now := utils.UTCNow()
	firstFollowUp := now.Add(utils.FirstFollowUpAfterAccept)

	err := s.withTransaction(ctx, func(txCtx context.Context) error {
		if err := link.TransitionTo(models.CampaignProspectStatusConnectionAccepted); err != nil {
			return err
		}
		link.AcceptedAt = &now
		link.NextFollowUpAt = &firstFollowUp
		if err := link.BeforeUpdate(); err != nil {
			return err
		}
		if err := s.linkRepo.Update(txCtx, link); err != nil {
			return err
		}

		if err := s.prospectRepo.UpdateConnectionStatus(txCtx, prospect.ID, models.ProspectConnectionStatusConnected); err != nil {
			return err
		}

		return s.campaignRepo.IncrementCounter(txCtx, campaign.ID, "connections_accepted", 1)
	})
	if err != nil {
		return NewBusinessError("ACCEPTANCE_STATE_UPDATE_FAILED", "Failed to record accepted connection", err)
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, &link.ProspectID, models.ActivityConnectionAccepted, map[string]any{
		"prospect_name": prospect.FullName,
	})
	return nil
}

// markReplied marks the conversation as answered and stops the follow-up
// sequence for this prospect
func (s *OutreachFlowImpl) markReplied(ctx context.Context, campaign *models.Campaign, link *models.CampaignProspect, prospect *models.Prospect) error {
	now := utils.UTCNow()

	err := s.withTransaction(ctx, func(txCtx context.Context) error {
		if err := link.TransitionTo(models.CampaignProspectStatusReplied); err != nil {
			return err
		}
		link.RepliedAt = &now
		link.NextFollowUpAt = nil
		if err := link.BeforeUpdate(); err != nil {
			return err
		}
		if err := s.linkRepo.Update(txCtx, link); err != nil {
			return err
		}

		return s.campaignRepo.IncrementCounter(txCtx, campaign.ID, "replies_received", 1)
	})
	if err != nil {
		return NewBusinessError("REPLY_STATE_UPDATE_FAILED", "Failed to record prospect reply", err)
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, &link.ProspectID, models.ActivityReplyReceived, map[string]any{
		"prospect_name": prospect.FullName,
	})
	return nil
}
