package businessflow

import (
	"bytes"
	"context"
	"strings"

	"github.com/apexhq/outreach-engine/app/dto"
	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/repository"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ProspectFlow handles manual prospect registration and bulk import
type ProspectFlow interface {
	CreateProspect(ctx context.Context, req *dto.CreateProspectRequest) (*dto.ProspectResponse, error)
	AttachToCampaign(ctx context.Context, req *dto.AttachProspectRequest) error
	ImportFromSpreadsheet(ctx context.Context, req *dto.ImportProspectsRequest) (*dto.ImportProspectsResponse, error)
}

// ProspectFlowImpl implements the prospect flow
type ProspectFlowImpl struct {
	prospectRepo repository.ProspectRepository
	campaignRepo repository.CampaignRepository
	linkRepo     repository.CampaignProspectRepository
	activityRepo repository.ActivityLogRepository
	validator    *validator.Validate
	db           *gorm.DB
}

// NewProspectFlow creates a new prospect flow instance
func NewProspectFlow(
	prospectRepo repository.ProspectRepository,
	campaignRepo repository.CampaignRepository,
	linkRepo repository.CampaignProspectRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) ProspectFlow {
	return &ProspectFlowImpl{
		prospectRepo: prospectRepo,
		campaignRepo: campaignRepo,
		linkRepo:     linkRepo,
		activityRepo: activityRepo,
		validator:    validator.New(),
		db:           db,
	}
}

// CreateProspect registers a prospect manually. Profile ids are unique per
// user; registering the same profile twice is rejected.
func (s *ProspectFlowImpl) CreateProspect(ctx context.Context, req *dto.CreateProspectRequest) (*dto.ProspectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewBusinessError("PROSPECT_VALIDATION_FAILED", "Prospect validation failed", err)
	}

	existing, err := s.prospectRepo.ByExternalProfileID(ctx, req.UserID, req.ExternalProfileID)
	if err != nil {
		return nil, NewBusinessError("PROSPECT_LOOKUP_FAILED", "Failed to lookup prospect", err)
	}
	if existing != nil {
		return nil, NewBusinessError("PROSPECT_ALREADY_EXISTS", "Prospect with this profile id already exists", ErrProspectAlreadyExists)
	}

	prospect := &models.Prospect{
		UserID:            req.UserID,
		ExternalProfileID: req.ExternalProfileID,
		FullName:          req.FullName,
		Company:           req.Company,
		JobTitle:          req.JobTitle,
		Location:          req.Location,
		AvatarURL:         req.AvatarURL,
		ConnectionStatus:  models.ProspectConnectionStatusNone,
	}
	if err := prospect.BeforeCreate(); err != nil {
		return nil, NewBusinessError("PROSPECT_CREATION_FAILED", "Prospect creation failed", err)
	}
	if err := s.prospectRepo.Save(ctx, prospect); err != nil {
		return nil, NewBusinessError("PROSPECT_CREATION_FAILED", "Prospect creation failed", err)
	}

	resp := toProspectResponse(prospect)
	return &resp, nil
}

// AttachToCampaign links an existing prospect to a campaign in queued state
func (s *ProspectFlowImpl) AttachToCampaign(ctx context.Context, req *dto.AttachProspectRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return NewBusinessError("ATTACH_VALIDATION_FAILED", "Attach validation failed", err)
	}

	campaign, err := s.ownedCampaign(ctx, req.UserID, req.CampaignUUID)
	if err != nil {
		return err
	}

	prospect, err := s.prospectRepo.ByID(ctx, req.ProspectID)
	if err != nil {
		return NewBusinessError("PROSPECT_LOOKUP_FAILED", "Failed to lookup prospect", err)
	}
	if prospect == nil || prospect.UserID != req.UserID {
		return NewBusinessError("PROSPECT_NOT_FOUND", "Prospect not found", ErrProspectNotFound)
	}

	existing, err := s.linkRepo.ByCampaignAndProspect(ctx, campaign.ID, prospect.ID)
	if err != nil {
		return NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup campaign prospect", err)
	}
	if existing != nil {
		return NewBusinessError("PROSPECT_ALREADY_LINKED", "Prospect is already linked to this campaign", ErrProspectAlreadyLinked)
	}

	link := &models.CampaignProspect{
		CampaignID: campaign.ID,
		ProspectID: prospect.ID,
		Status:     models.CampaignProspectStatusQueued,
	}
	if err := link.BeforeCreate(); err != nil {
		return NewBusinessError("LINK_CREATION_FAILED", "Failed to link prospect", err)
	}
	if err := s.linkRepo.Save(ctx, link); err != nil {
		return NewBusinessError("LINK_CREATION_FAILED", "Failed to link prospect", err)
	}
	return nil
}

// Recognized import sheet columns, matched case-insensitively against the
// header row.
const (
	importColumnProfileID = "profile_id"
	importColumnFullName  = "full_name"
	importColumnCompany   = "company"
	importColumnJobTitle  = "job_title"
	importColumnLocation  = "location"
)

// ImportFromSpreadsheet bulk-imports prospects from an XLSX sheet and links
// them to the campaign. Rows without a profile id, and profiles already
// linked, are counted as skipped; the import never fails halfway on bad rows.
func (s *ProspectFlowImpl) ImportFromSpreadsheet(ctx context.Context, req *dto.ImportProspectsRequest) (*dto.ImportProspectsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewBusinessError("IMPORT_VALIDATION_FAILED", "Import validation failed", err)
	}

	campaign, err := s.ownedCampaign(ctx, req.UserID, req.CampaignUUID)
	if err != nil {
		return nil, err
	}

	file, err := excelize.OpenReader(bytes.NewReader(req.Content))
	if err != nil {
		return nil, NewBusinessError("IMPORT_FILE_INVALID", "Import file is invalid", ErrImportFileInvalid)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewBusinessError("IMPORT_SHEET_EMPTY", "Import sheet contains no rows", ErrImportSheetEmpty)
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, NewBusinessError("IMPORT_FILE_INVALID", "Import file is invalid", ErrImportFileInvalid)
	}
	if len(rows) < 2 {
		return nil, NewBusinessError("IMPORT_SHEET_EMPTY", "Import sheet contains no rows", ErrImportSheetEmpty)
	}

	columns := mapImportColumns(rows[0])
	if _, ok := columns[importColumnProfileID]; !ok {
		return nil, NewBusinessError("IMPORT_FILE_INVALID", "Import sheet has no profile_id column", ErrImportFileInvalid)
	}

	resp := &dto.ImportProspectsResponse{}
	for _, row := range rows[1:] {
		profileID := cellValue(row, columns, importColumnProfileID)
		if profileID == "" {
			resp.Skipped++
			continue
		}

		err := s.importRow(ctx, campaign, profileID, row, columns)
		if err != nil {
			if IsProspectAlreadyLinked(err) {
				resp.Skipped++
				continue
			}
			return nil, err
		}
		resp.Imported++
	}

	if resp.Imported > 0 {
		logActivity(ctx, s.activityRepo, campaign.UserID, &campaign.ID, nil, models.ActivityProspectsImported, map[string]any{
			"count":     resp.Imported,
			"file_name": req.FileName,
		})
	}
	return resp, nil
}

// withTransaction wraps fn in a database transaction when a handle is
// configured; unit tests with in-memory repositories run fn directly.
func (s *ProspectFlowImpl) withTransaction(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

// importRow upserts one prospect and its campaign link atomically
func (s *ProspectFlowImpl) importRow(ctx context.Context, campaign *models.Campaign, profileID string, row []string, columns map[string]int) error {
	return s.withTransaction(ctx, func(txCtx context.Context) error {
		prospect, err := s.prospectRepo.ByExternalProfileID(txCtx, campaign.UserID, profileID)
		if err != nil {
			return NewBusinessError("PROSPECT_LOOKUP_FAILED", "Failed to lookup prospect", err)
		}
		if prospect == nil {
			prospect = &models.Prospect{
				UserID:            campaign.UserID,
				ExternalProfileID: profileID,
				FullName:          cellValue(row, columns, importColumnFullName),
				Company:           cellValue(row, columns, importColumnCompany),
				JobTitle:          cellValue(row, columns, importColumnJobTitle),
				Location:          cellValue(row, columns, importColumnLocation),
				ConnectionStatus:  models.ProspectConnectionStatusNone,
			}
			if err := prospect.BeforeCreate(); err != nil {
				return NewBusinessError("PROSPECT_CREATION_FAILED", "Prospect creation failed", err)
			}
			if err := s.prospectRepo.Save(txCtx, prospect); err != nil {
				return NewBusinessError("PROSPECT_CREATION_FAILED", "Prospect creation failed", err)
			}
		}

		existing, err := s.linkRepo.ByCampaignAndProspect(txCtx, campaign.ID, prospect.ID)
		if err != nil {
			return NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup campaign prospect", err)
		}
		if existing != nil {
			return ErrProspectAlreadyLinked
		}

		link := &models.CampaignProspect{
			CampaignID: campaign.ID,
			ProspectID: prospect.ID,
			Status:     models.CampaignProspectStatusQueued,
		}
		if err := link.BeforeCreate(); err != nil {
			return NewBusinessError("LINK_CREATION_FAILED", "Failed to link prospect", err)
		}
		return s.linkRepo.Save(txCtx, link)
	})
}

func (s *ProspectFlowImpl) ownedCampaign(ctx context.Context, userID uint, campaignUUID string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if campaign.UserID != userID {
		return nil, NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign belongs to another user", ErrCampaignAccessDenied)
	}
	return campaign, nil
}

func mapImportColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func cellValue(row []string, columns map[string]int, column string) string {
	idx, ok := columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func toProspectResponse(p *models.Prospect) dto.ProspectResponse {
	return dto.ProspectResponse{
		ID:                p.ID,
		ExternalProfileID: p.ExternalProfileID,
		FullName:          p.FullName,
		Company:           p.Company,
		JobTitle:          p.JobTitle,
		Location:          p.Location,
		AvatarURL:         p.AvatarURL,
		ConnectionStatus:  p.ConnectionStatus.String(),
		CreatedAt:         p.CreatedAt,
	}
}
