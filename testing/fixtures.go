// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/apexhq/outreach-engine/models"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCampaign creates an active campaign with sensible targeting
func (tf *TestFixtures) CreateTestCampaign(userID uint) (*models.Campaign, error) {
	now := time.Now().UTC()
	campaign := &models.Campaign{
		UserID:               userID,
		Name:                 fmt.Sprintf("Test Campaign %d", rand.Intn(100000)),
		Status:               models.CampaignStatusActive,
		JobTitles:            []string{"VP Engineering", "CTO"},
		Locations:            []string{"Berlin"},
		Keywords:             []string{"saas"},
		DailyConnectionLimit: 25,
		DailyMessageLimit:    50,
		ConnectionMessage:    "Hi {{first_name}}, great to connect.",
		FollowUpMessage1:     "Thanks for connecting!",
		FollowUpMessage2:     "Wanted to follow up on my last note.",
		FollowUpDelayDays1:   3,
		FollowUpDelayDays2:   7,
		FollowUpDelayDays3:   14,
		StartedAt:            &now,
	}
	if err := campaign.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestProspect creates a prospect with a unique external profile id
func (tf *TestFixtures) CreateTestProspect(userID uint) (*models.Prospect, error) {
	prospect := &models.Prospect{
		UserID:            userID,
		ExternalProfileID: fmt.Sprintf("profile-%d-%d", userID, rand.Intn(1000000)),
		FullName:          "Jane Example",
		Company:           "Example GmbH",
		JobTitle:          "VP Engineering",
		Location:          "Berlin",
		ConnectionStatus:  models.ProspectConnectionStatusNone,
	}
	if err := prospect.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := tf.DB.DB.Create(prospect).Error; err != nil {
		return nil, fmt.Errorf("failed to create test prospect: %w", err)
	}
	return prospect, nil
}

// LinkProspect links a prospect to a campaign in the given status
func (tf *TestFixtures) LinkProspect(campaign *models.Campaign, prospect *models.Prospect, status models.CampaignProspectStatus) (*models.CampaignProspect, error) {
	link := &models.CampaignProspect{
		CampaignID: campaign.ID,
		ProspectID: prospect.ID,
		Status:     status,
	}
	if err := link.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to link test prospect: %w", err)
	}
	return link, nil
}

// CreateTestLinkedAccount creates an active linked messaging account
func (tf *TestFixtures) CreateTestLinkedAccount(userID uint, sealedCredential []byte) (*models.LinkedAccount, error) {
	account := &models.LinkedAccount{
		UserID:              userID,
		ProviderAccountID:   fmt.Sprintf("account-%d", rand.Intn(1000000)),
		DisplayName:         "Test Account",
		Status:              models.LinkedAccountStatusActive,
		EncryptedCredential: sealedCredential,
	}
	if err := account.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test linked account: %w", err)
	}
	return account, nil
}

// CreateTestUserSettings creates settings with the given autopilot flag
func (tf *TestFixtures) CreateTestUserSettings(userID uint, autopilot bool) (*models.UserSettings, error) {
	settings := &models.UserSettings{
		UserID:           userID,
		AutopilotEnabled: autopilot,
	}
	if err := tf.DB.DB.Create(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user settings: %w", err)
	}
	return settings, nil
}

// CreateTestPendingAction creates an open pending action for a campaign prospect
func (tf *TestFixtures) CreateTestPendingAction(campaign *models.Campaign, prospect *models.Prospect, actionType models.PendingActionType) (*models.PendingAction, error) {
	expires := time.Now().UTC().Add(7 * 24 * time.Hour)
	action := &models.PendingAction{
		UserID:     campaign.UserID,
		CampaignID: campaign.ID,
		ProspectID: prospect.ID,
		ActionType: actionType,
		Message:    "Hello there",
		Status:     models.PendingActionStatusPending,
		ExpiresAt:  &expires,
		Metadata: models.PendingActionMetadata{
			CampaignName: campaign.Name,
			ProspectName: prospect.FullName,
		},
	}
	if err := action.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := tf.DB.DB.Create(action).Error; err != nil {
		return nil, fmt.Errorf("failed to create test pending action: %w", err)
	}
	return action, nil
}
