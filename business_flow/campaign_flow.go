package businessflow

import (
	"context"
	"strings"

	"github.com/apexhq/outreach-engine/app/dto"
	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/repository"
	"github.com/apexhq/outreach-engine/utils"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CampaignFlow handles campaign lifecycle business logic
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CreateCampaignResponse, error)
	GetCampaign(ctx context.Context, agent AgentContext, campaignUUID string) (*dto.CampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	StartCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error
	PauseCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error
	ResumeCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error
	CompleteCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error
}

// CampaignFlowImpl implements the campaign lifecycle flow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	activityRepo repository.ActivityLogRepository
	validator    *validator.Validate
	db           *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		activityRepo: activityRepo,
		validator:    validator.New(),
		db:           db,
	}
}

// CreateCampaign creates a draft campaign with defaults applied
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CreateCampaignResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
	}
	if !hasTargetingCriteria(req) {
		return nil, NewBusinessError("TARGETING_CRITERIA_REQUIRED", "At least one targeting criterion is required", ErrTargetingCriteriaRequired)
	}

	campaign := &models.Campaign{
		UserID:               req.UserID,
		Name:                 strings.TrimSpace(req.Name),
		Status:               models.CampaignStatusDraft,
		JobTitles:            req.JobTitles,
		Locations:            req.Locations,
		Keywords:             req.Keywords,
		Industries:           req.Industries,
		DailyConnectionLimit: utils.DefaultDailyConnectionLimit,
		DailyMessageLimit:    utils.DefaultDailyMessageLimit,
		ConnectionMessage:    req.ConnectionMessage,
		FollowUpMessage1:     req.FollowUpMessage1,
		FollowUpMessage2:     req.FollowUpMessage2,
		FollowUpMessage3:     req.FollowUpMessage3,
		FollowUpDelayDays1:   utils.DefaultFollowUpDelayDays1,
		FollowUpDelayDays2:   utils.DefaultFollowUpDelayDays2,
		FollowUpDelayDays3:   utils.DefaultFollowUpDelayDays3,
	}
	if req.DailyConnectionLimit != nil {
		campaign.DailyConnectionLimit = *req.DailyConnectionLimit
	}
	if req.DailyMessageLimit != nil {
		campaign.DailyMessageLimit = *req.DailyMessageLimit
	}
	if req.FollowUpDelayDays1 != nil {
		campaign.FollowUpDelayDays1 = *req.FollowUpDelayDays1
	}
	if req.FollowUpDelayDays2 != nil {
		campaign.FollowUpDelayDays2 = *req.FollowUpDelayDays2
	}
	if req.FollowUpDelayDays3 != nil {
		campaign.FollowUpDelayDays3 = *req.FollowUpDelayDays3
	}

	if err := campaign.BeforeCreate(); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	return &dto.CreateCampaignResponse{
		UUID:      campaign.UUID.String(),
		Status:    campaign.Status.String(),
		CreatedAt: campaign.CreatedAt,
	}, nil
}

// GetCampaign returns a campaign owned by the agent
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, agent AgentContext, campaignUUID string) (*dto.CampaignResponse, error) {
	campaign, err := s.ownedCampaign(ctx, agent, campaignUUID)
	if err != nil {
		return nil, err
	}
	resp := toCampaignResponse(campaign)
	return &resp, nil
}

// ListCampaigns returns the agent's campaigns, newest first
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	if req.Page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Invalid page", ErrInvalidPage)
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.CampaignFilter{UserID: &req.UserID}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessErrorf("INVALID_CAMPAIGN_STATUS", "Invalid campaign status %q", nil, *req.Status)
		}
		filter.Status = &status
	}

	campaigns, err := s.campaignRepo.ByFilter(ctx, filter, "created_at DESC", req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_COUNT_FAILED", "Failed to count campaigns", err)
	}

	items := make([]dto.CampaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, toCampaignResponse(campaign))
	}

	return &dto.ListCampaignsResponse{
		Items: items,
		Pagination: dto.PaginationInfo{
			Page:     req.Page,
			PageSize: req.PageSize,
			Total:    total,
		},
	}, nil
}

// StartCampaign activates a draft campaign
func (s *CampaignFlowImpl) StartCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error {
	return s.transition(ctx, agent, campaignUUID, models.CampaignStatusActive, models.ActivityCampaignStarted)
}

// PauseCampaign pauses an active campaign
func (s *CampaignFlowImpl) PauseCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error {
	return s.transition(ctx, agent, campaignUUID, models.CampaignStatusPaused, models.ActivityCampaignPaused)
}

// ResumeCampaign reactivates a paused campaign
func (s *CampaignFlowImpl) ResumeCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error {
	return s.transition(ctx, agent, campaignUUID, models.CampaignStatusActive, models.ActivityCampaignResumed)
}

// CompleteCampaign marks an active campaign finished
func (s *CampaignFlowImpl) CompleteCampaign(ctx context.Context, agent AgentContext, campaignUUID string) error {
	return s.transition(ctx, agent, campaignUUID, models.CampaignStatusCompleted, models.ActivityCampaignCompleted)
}

// transition applies a lifecycle status change with ownership and state checks
func (s *CampaignFlowImpl) transition(ctx context.Context, agent AgentContext, campaignUUID string, target models.CampaignStatus, activity string) error {
	campaign, err := s.ownedCampaign(ctx, agent, campaignUUID)
	if err != nil {
		return err
	}

	if !campaign.CanTransitionTo(target) {
		return NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Cannot move campaign from %s to %s", ErrInvalidStatusTransition, campaign.Status, target)
	}

	now := utils.UTCNow()
	previous := campaign.Status
	campaign.Status = target
	switch target {
	case models.CampaignStatusActive:
		if campaign.StartedAt == nil {
			campaign.StartedAt = &now
		}
	case models.CampaignStatusCompleted:
		campaign.CompletedAt = &now
	}

	if err := campaign.BeforeUpdate(); err != nil {
		return NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Campaign update failed", err)
	}
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Campaign update failed", err)
	}

	logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, nil, activity, map[string]any{
		"from": previous.String(),
		"to":   target.String(),
	})
	return nil
}

// ownedCampaign fetches a campaign by UUID and verifies agent ownership
func (s *CampaignFlowImpl) ownedCampaign(ctx context.Context, agent AgentContext, campaignUUID string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if campaign.UserID != agent.UserID {
		return nil, NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign belongs to another user", ErrCampaignAccessDenied)
	}
	return campaign, nil
}

func hasTargetingCriteria(req *dto.CreateCampaignRequest) bool {
	return len(FilterMeaningfulTokens(req.JobTitles)) > 0 ||
		len(FilterMeaningfulTokens(req.Locations)) > 0 ||
		len(FilterMeaningfulTokens(req.Keywords)) > 0 ||
		len(FilterMeaningfulTokens(req.Industries)) > 0
}

func toCampaignResponse(c *models.Campaign) dto.CampaignResponse {
	return dto.CampaignResponse{
		UUID:                 c.UUID.String(),
		Name:                 c.Name,
		Status:               c.Status.String(),
		JobTitles:            c.JobTitles,
		Locations:            c.Locations,
		Keywords:             c.Keywords,
		Industries:           c.Industries,
		DailyConnectionLimit: c.DailyConnectionLimit,
		DailyMessageLimit:    c.DailyMessageLimit,
		ConnectionMessage:    c.ConnectionMessage,
		FollowUpMessage1:     c.FollowUpMessage1,
		FollowUpMessage2:     c.FollowUpMessage2,
		FollowUpMessage3:     c.FollowUpMessage3,
		FollowUpDelayDays1:   c.FollowUpDelayDays1,
		FollowUpDelayDays2:   c.FollowUpDelayDays2,
		FollowUpDelayDays3:   c.FollowUpDelayDays3,
		ConnectionsSent:      c.ConnectionsSent,
		ConnectionsAccepted:  c.ConnectionsAccepted,
		MessagesSent:         c.MessagesSent,
		RepliesReceived:      c.RepliesReceived,
		StartedAt:            c.StartedAt,
		CompletedAt:          c.CompletedAt,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}
