package repository_test

import (
	"testing"
	"time"

	"github.com/apexhq/outreach-engine/models"
	"github.com/apexhq/outreach-engine/repository"
	testingutil "github.com/apexhq/outreach-engine/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignProspectRepository(t *testing.T) {
	if !testingutil.Available() {
		t.Skip("TEST_DB_HOST not set; skipping database integration test")
	}

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		repo := repository.NewCampaignProspectRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)

		seedLink := func(t *testing.T, campaign *models.Campaign, status models.CampaignProspectStatus) *models.CampaignProspect {
			t.Helper()
			prospect, err := fixtures.CreateTestProspect(campaign.UserID)
			require.NoError(t, err)
			link, err := fixtures.LinkProspect(campaign, prospect, status)
			require.NoError(t, err)
			return link
		}

		t.Run("by campaign and prospect", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(1)
			require.NoError(t, err)
			link := seedLink(t, campaign, models.CampaignProspectStatusQueued)

			found, err := repo.ByCampaignAndProspect(ctx, campaign.ID, link.ProspectID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link.ID, found.ID)
			require.NotNil(t, found.Prospect)
			assert.Equal(t, link.ProspectID, found.Prospect.ID)

			missing, err := repo.ByCampaignAndProspect(ctx, campaign.ID, 99999)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("list queued keeps creation order", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			campaign, err := fixtures.CreateTestCampaign(1)
			require.NoError(t, err)

			first := seedLink(t, campaign, models.CampaignProspectStatusQueued)
			second := seedLink(t, campaign, models.CampaignProspectStatusQueued)
			seedLink(t, campaign, models.CampaignProspectStatusConnectionSent)

			queued, err := repo.ListQueued(ctx, campaign.ID, 10)
			require.NoError(t, err)
			require.Len(t, queued, 2)
			assert.Equal(t, first.ID, queued[0].ID)
			assert.Equal(t, second.ID, queued[1].ID)

			limited, err := repo.ListQueued(ctx, campaign.ID, 1)
			require.NoError(t, err)
			require.Len(t, limited, 1)
			assert.Equal(t, first.ID, limited[0].ID)
		})

		t.Run("list due follow-ups", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			campaign, err := fixtures.CreateTestCampaign(1)
			require.NoError(t, err)

			now := time.Now().UTC()
			past := now.Add(-time.Hour)
			future := now.Add(time.Hour)

			due := seedLink(t, campaign, models.CampaignProspectStatusConnectionAccepted)
			due.NextFollowUpAt = &past
			require.NoError(t, repo.Update(ctx, due))

			notDue := seedLink(t, campaign, models.CampaignProspectStatusConnectionAccepted)
			notDue.NextFollowUpAt = &future
			require.NoError(t, repo.Update(ctx, notDue))

			exhausted := seedLink(t, campaign, models.CampaignProspectStatusMessageSent)
			exhausted.NextFollowUpAt = &past
			exhausted.FollowUpCount = 3
			require.NoError(t, repo.Update(ctx, exhausted))

			// Queued links never receive follow-ups even if a schedule leaked in.
			queued := seedLink(t, campaign, models.CampaignProspectStatusQueued)
			queued.NextFollowUpAt = &past
			require.NoError(t, repo.Update(ctx, queued))

			links, err := repo.ListDueFollowUps(ctx, campaign.ID, now, 10)
			require.NoError(t, err)
			require.Len(t, links, 1)
			assert.Equal(t, due.ID, links[0].ID)
			require.NotNil(t, links[0].Prospect)
		})

		t.Run("list tracked excludes terminal and queued links", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			campaign, err := fixtures.CreateTestCampaign(1)
			require.NoError(t, err)

			seedLink(t, campaign, models.CampaignProspectStatusQueued)
			sent := seedLink(t, campaign, models.CampaignProspectStatusConnectionSent)
			accepted := seedLink(t, campaign, models.CampaignProspectStatusConnectionAccepted)
			messaged := seedLink(t, campaign, models.CampaignProspectStatusMessageSent)
			seedLink(t, campaign, models.CampaignProspectStatusReplied)
			seedLink(t, campaign, models.CampaignProspectStatusFailed)

			tracked, err := repo.ListTracked(ctx, campaign.ID)
			require.NoError(t, err)
			require.Len(t, tracked, 3)
			assert.Equal(t, sent.ID, tracked[0].ID)
			assert.Equal(t, accepted.ID, tracked[1].ID)
			assert.Equal(t, messaged.ID, tracked[2].ID)
		})

		t.Run("quota counters", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			campaign, err := fixtures.CreateTestCampaign(1)
			require.NoError(t, err)

			midnight := time.Now().UTC().Truncate(24 * time.Hour)
			today := midnight.Add(2 * time.Hour)
			yesterday := midnight.Add(-2 * time.Hour)

			sentToday := seedLink(t, campaign, models.CampaignProspectStatusConnectionSent)
			sentToday.ConnectionSentAt = &today
			require.NoError(t, repo.Update(ctx, sentToday))

			sentYesterday := seedLink(t, campaign, models.CampaignProspectStatusConnectionSent)
			sentYesterday.ConnectionSentAt = &yesterday
			require.NoError(t, repo.Update(ctx, sentYesterday))

			messaged := seedLink(t, campaign, models.CampaignProspectStatusMessageSent)
			messaged.LastMessageSentAt = &today
			require.NoError(t, repo.Update(ctx, messaged))

			connections, err := repo.CountConnectionsSentSince(ctx, campaign.ID, midnight)
			require.NoError(t, err)
			assert.Equal(t, int64(1), connections)

			messages, err := repo.CountMessagesSentSince(ctx, campaign.ID, midnight)
			require.NoError(t, err)
			assert.Equal(t, int64(1), messages)
		})

		t.Run("status and schedule counts", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			campaign, err := fixtures.CreateTestCampaign(1)
			require.NoError(t, err)

			seedLink(t, campaign, models.CampaignProspectStatusQueued)
			seedLink(t, campaign, models.CampaignProspectStatusReplied)
			seedLink(t, campaign, models.CampaignProspectStatusFailed)

			scheduled := seedLink(t, campaign, models.CampaignProspectStatusConnectionAccepted)
			next := time.Now().UTC().Add(time.Hour)
			scheduled.NextFollowUpAt = &next
			require.NoError(t, repo.Update(ctx, scheduled))

			live, err := repo.CountInStatuses(ctx, campaign.ID, []models.CampaignProspectStatus{
				models.CampaignProspectStatusQueued,
				models.CampaignProspectStatusConnectionSent,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), live)

			pending, err := repo.CountScheduledFollowUps(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), pending)
		})

		return nil
	})
	require.NoError(t, err)
}
