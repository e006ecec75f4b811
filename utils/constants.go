package utils

import (
	"time"
)

// Campaign defaults applied when a campaign is created without explicit limits
const (
	// DefaultDailyConnectionLimit is the default number of connection requests per campaign per day
	DefaultDailyConnectionLimit = 25

	// DefaultDailyMessageLimit is the default number of follow-up messages per campaign per day
	DefaultDailyMessageLimit = 50

	// MaxFollowUpSteps is the number of configurable follow-up messages per campaign
	MaxFollowUpSteps = 3

	// DefaultFollowUpDelayDays1 is the default delay before the first follow-up
	DefaultFollowUpDelayDays1 = 3

	// DefaultFollowUpDelayDays2 is the default delay before the second follow-up
	DefaultFollowUpDelayDays2 = 7

	// DefaultFollowUpDelayDays3 is the default delay before the third follow-up
	DefaultFollowUpDelayDays3 = 14
)

// Discovery and dispatch constants
const (
	// MaxSearchResultsPerCycle caps a single profile search regardless of campaign limits
	MaxSearchResultsPerCycle = 25
)

// Pending action constants
const (
	// PendingActionTTL is how long a pending action stays actionable before expiring
	PendingActionTTL = 7 * 24 * time.Hour
)

// Engagement sync constants
const (
	// FirstFollowUpAfterAccept is the delay applied when a connection acceptance is detected
	FirstFollowUpAfterAccept = 3 * 24 * time.Hour
)
