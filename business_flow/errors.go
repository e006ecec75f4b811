// Package businessflow contains the core business logic for the outreach pipeline
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign-related errors
	ErrCampaignNotFound          = errors.New("campaign not found")
	ErrCampaignNotActive         = errors.New("campaign is not active")
	ErrCampaignAccessDenied      = errors.New("campaign access denied")
	ErrInvalidStatusTransition   = errors.New("invalid campaign status transition")
	ErrCampaignNameRequired      = errors.New("campaign name is required")
	ErrCampaignRunInProgress     = errors.New("campaign run already in progress")
	ErrTargetingCriteriaRequired = errors.New("at least one targeting criterion is required")

	// Account and credential errors
	ErrNoActiveLinkedAccount  = errors.New("no active linked messaging account")
	ErrMessagingNotConfigured = errors.New("messaging client is not configured")
	ErrCredentialUnusable     = errors.New("messaging credential could not be opened")

	// Prospect-related errors
	ErrProspectNotFound       = errors.New("prospect not found")
	ErrProspectAlreadyExists  = errors.New("prospect with this profile id already exists")
	ErrProspectAlreadyLinked  = errors.New("prospect is already linked to this campaign")
	ErrProspectProfileMissing = errors.New("prospect has no external profile id")

	// Pipeline phase errors
	ErrDiscoverySearchFailed = errors.New("prospect discovery search failed")
	ErrConnectionSendFailed  = errors.New("connection request send failed")
	ErrFollowUpSendFailed    = errors.New("follow-up message send failed")

	// Pending action errors
	ErrPendingActionNotFound      = errors.New("pending action not found")
	ErrPendingActionNotActionable = errors.New("pending action is not actionable")

	// Import errors
	ErrImportFileInvalid = errors.New("import file is invalid")
	ErrImportSheetEmpty  = errors.New("import sheet contains no rows")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignNotActive(err error) bool {
	return errors.Is(err, ErrCampaignNotActive)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsInvalidStatusTransition(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition)
}

func IsCampaignRunInProgress(err error) bool {
	return errors.Is(err, ErrCampaignRunInProgress)
}

func IsNoActiveLinkedAccount(err error) bool {
	return errors.Is(err, ErrNoActiveLinkedAccount)
}

func IsMessagingNotConfigured(err error) bool {
	return errors.Is(err, ErrMessagingNotConfigured)
}

func IsCredentialUnusable(err error) bool {
	return errors.Is(err, ErrCredentialUnusable)
}

func IsProspectNotFound(err error) bool {
	return errors.Is(err, ErrProspectNotFound)
}

func IsProspectAlreadyExists(err error) bool {
	return errors.Is(err, ErrProspectAlreadyExists)
}

func IsProspectAlreadyLinked(err error) bool {
	return errors.Is(err, ErrProspectAlreadyLinked)
}

func IsDiscoverySearchFailed(err error) bool {
	return errors.Is(err, ErrDiscoverySearchFailed)
}

func IsPendingActionNotFound(err error) bool {
	return errors.Is(err, ErrPendingActionNotFound)
}

func IsPendingActionNotActionable(err error) bool {
	return errors.Is(err, ErrPendingActionNotActionable)
}

func IsImportFileInvalid(err error) bool {
	return errors.Is(err, ErrImportFileInvalid)
}
