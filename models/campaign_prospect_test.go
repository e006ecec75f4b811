package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampaignProspectStatusTerminal(t *testing.T) {
	assert.True(t, CampaignProspectStatusReplied.IsTerminal())
	assert.True(t, CampaignProspectStatusFailed.IsTerminal())

	assert.False(t, CampaignProspectStatusQueued.IsTerminal())
	assert.False(t, CampaignProspectStatusConnectionSent.IsTerminal())
	assert.False(t, CampaignProspectStatusConnectionAccepted.IsTerminal())
	assert.False(t, CampaignProspectStatusMessageSent.IsTerminal())
}

func TestCampaignProspectStatusTransitions(t *testing.T) {
	cases := []struct {
		from    CampaignProspectStatus
		to      CampaignProspectStatus
		allowed bool
	}{
		{CampaignProspectStatusQueued, CampaignProspectStatusConnectionSent, true},
		{CampaignProspectStatusQueued, CampaignProspectStatusConnectionAccepted, false},
		{CampaignProspectStatusConnectionSent, CampaignProspectStatusConnectionAccepted, true},
		{CampaignProspectStatusConnectionSent, CampaignProspectStatusReplied, true},
		{CampaignProspectStatusConnectionSent, CampaignProspectStatusMessageSent, false},
		{CampaignProspectStatusConnectionAccepted, CampaignProspectStatusMessageSent, true},
		{CampaignProspectStatusConnectionAccepted, CampaignProspectStatusReplied, true},
		{CampaignProspectStatusMessageSent, CampaignProspectStatusReplied, true},
		{CampaignProspectStatusMessageSent, CampaignProspectStatusConnectionAccepted, false},
		{CampaignProspectStatusReplied, CampaignProspectStatusMessageSent, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	// Any non-terminal state can fail; terminal states cannot.
	for _, from := range []CampaignProspectStatus{
		CampaignProspectStatusQueued,
		CampaignProspectStatusConnectionSent,
		CampaignProspectStatusConnectionAccepted,
		CampaignProspectStatusMessageSent,
	} {
		assert.True(t, from.CanTransitionTo(CampaignProspectStatusFailed), "%s -> failed", from)
	}
	assert.False(t, CampaignProspectStatusReplied.CanTransitionTo(CampaignProspectStatusFailed))
	assert.False(t, CampaignProspectStatusFailed.CanTransitionTo(CampaignProspectStatusFailed))
}

func TestCampaignProspectTransitionTo(t *testing.T) {
	t.Run("valid move updates the status", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusQueued}
		assert.NoError(t, link.TransitionTo(CampaignProspectStatusConnectionSent))
		assert.Equal(t, CampaignProspectStatusConnectionSent, link.Status)
	})

	t.Run("invalid move is rejected and leaves the status alone", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusConnectionSent}
		err := link.TransitionTo(CampaignProspectStatusMessageSent)
		assert.Error(t, err)
		assert.Equal(t, CampaignProspectStatusConnectionSent, link.Status)
	})

	t.Run("writing the current status is a no-op", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusMessageSent}
		assert.NoError(t, link.TransitionTo(CampaignProspectStatusMessageSent))
		assert.Equal(t, CampaignProspectStatusMessageSent, link.Status)
	})

	t.Run("any non-terminal link can fail", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusConnectionAccepted}
		assert.NoError(t, link.TransitionTo(CampaignProspectStatusFailed))
		assert.Equal(t, CampaignProspectStatusFailed, link.Status)
	})

	t.Run("terminal links reject further moves", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusReplied}
		assert.Error(t, link.TransitionTo(CampaignProspectStatusFailed))
		assert.Equal(t, CampaignProspectStatusReplied, link.Status)
	})
}

func TestCampaignProspectFollowUpEligibility(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("due link in an eligible status", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusConnectionAccepted, NextFollowUpAt: &past}
		assert.True(t, link.IsFollowUpEligible(now))

		link.Status = CampaignProspectStatusMessageSent
		assert.True(t, link.IsFollowUpEligible(now))
	})

	t.Run("not yet due", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusConnectionAccepted, NextFollowUpAt: &future}
		assert.False(t, link.IsFollowUpEligible(now))
	})

	t.Run("no schedule", func(t *testing.T) {
		link := &CampaignProspect{Status: CampaignProspectStatusConnectionAccepted}
		assert.False(t, link.IsFollowUpEligible(now))
	})

	t.Run("sequence exhausted", func(t *testing.T) {
		link := &CampaignProspect{
			Status:         CampaignProspectStatusMessageSent,
			FollowUpCount:  3,
			NextFollowUpAt: &past,
		}
		assert.False(t, link.IsFollowUpEligible(now))
	})

	t.Run("ineligible statuses", func(t *testing.T) {
		for _, status := range []CampaignProspectStatus{
			CampaignProspectStatusQueued,
			CampaignProspectStatusConnectionSent,
			CampaignProspectStatusReplied,
			CampaignProspectStatusFailed,
		} {
			link := &CampaignProspect{Status: status, NextFollowUpAt: &past}
			assert.False(t, link.IsFollowUpEligible(now), "status %s", status)
		}
	})
}
