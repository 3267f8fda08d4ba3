// internal/profile/service.go

package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Gate authorizes phase-dependent actions for a campaign.
type Gate interface {
	Authorize(ctx context.Context, campaignID uuid.UUID, action campaign.Action) error
}

// Service defines the profile service interface
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, campaignID, userID uuid.UUID, req *UpdateProfileRequest) (*User, error)
}

// service implements the profile service
type service struct {
	repo Repository
	gate Gate
}

// NewService creates a new profile service
func NewService(repo Repository, gate Gate) Service {
	return &service{repo: repo, gate: gate}
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile is gated by edit_profile in the given campaign.
func (s *service) UpdateProfile(ctx context.Context, campaignID, userID uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	if err := s.gate.Authorize(ctx, campaignID, campaign.ActionEditProfile); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.apply(u)

	if u.ContactPreference == ContactSMS && u.PhoneNumber == "" {
		return nil, apperr.Validation("phoneNumber", "a phone number is required for SMS notifications")
	}

	return s.repo.UpdateProfile(ctx, u)
}
