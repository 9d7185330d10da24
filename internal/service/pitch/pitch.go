// Package pitch is the old name of the aicampaign package. It remains as a
// thin alias layer so code written against the pitch API keeps compiling.
//
// Deprecated: use internal/service/aicampaign instead.
package pitch

import (
	"github.com/ignite/outreach-platform/internal/service/aicampaign"
)

// Service is the campaign service under its old name.
//
// Deprecated: use aicampaign.Service.
type Service = aicampaign.Service

// CreateInput is the campaign creation payload under its old name.
//
// Deprecated: use aicampaign.CreateInput.
type CreateInput = aicampaign.CreateInput

// UpdateFields is the partial-update payload under its old name.
//
// Deprecated: use aicampaign.UpdateFields.
type UpdateFields = aicampaign.UpdateFields

// ListFilter is the listing filter under its old name.
//
// Deprecated: use aicampaign.ListFilter.
type ListFilter = aicampaign.ListFilter

// Stats holds queue counters under the old name.
//
// Deprecated: use aicampaign.Stats.
type Stats = aicampaign.Stats

// Repository is the campaign repository contract under its old name.
//
// Deprecated: use aicampaign.Repository.
type Repository = aicampaign.Repository

// Sentinel errors under their old names.
//
// Deprecated: use the aicampaign equivalents.
var (
	ErrNotFound          = aicampaign.ErrNotFound
	ErrInvalidTransition = aicampaign.ErrInvalidTransition
	ErrLaunchInProgress  = aicampaign.ErrLaunchInProgress
	ErrEmptyList         = aicampaign.ErrEmptyList
	ErrInvalidInput      = aicampaign.ErrInvalidInput
)

// NewService forwards to aicampaign.NewService.
//
// Deprecated: use aicampaign.NewService.
func NewService(repo aicampaign.Repository, contacts aicampaign.ContactSource, templates aicampaign.TemplateProvider, accounts aicampaign.AccountSource, newLock aicampaign.LockFactory) *Service {
	return aicampaign.NewService(repo, contacts, templates, accounts, newLock)
}
