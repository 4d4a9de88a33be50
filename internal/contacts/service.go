package contacts

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/apperr"
	"github.com/plantpulse/messaging/internal/profiles"
)

type Service struct {
	repo     *Repo
	profiles *profiles.Repo
}

func NewService(repo *Repo, profileRepo *profiles.Repo) *Service {
	return &Service{repo: repo, profiles: profileRepo}
}

// List returns the user's edges joined with the target profiles,
// newest-first.
func (s *Service) List(ctx context.Context, userID uint64) ([]ContactWithProfile, error) {
	edges, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list contacts", err)
	}
	if len(edges) == 0 {
		return []ContactWithProfile{}, nil
	}

	ids := make([]uint64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ContactID)
	}
	byID, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load contact profiles", err)
	}

	out := make([]ContactWithProfile, 0, len(edges))
	for _, e := range edges {
		out = append(out, ContactWithProfile{Contact: e, Profile: byID[e.ContactID]})
	}
	return out, nil
}

func (s *Service) ContactIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids, err := s.repo.ListContactIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list contact ids", err)
	}
	return ids, nil
}

// Add inserts a one-directional accepted edge. A second add for the
// same ordered pair is a Conflict.
func (s *Service) Add(ctx context.Context, userID, contactID uint64) (*ContactWithProfile, error) {
	if contactID == 0 {
		return nil, apperr.Validation("contact id required")
	}
	if contactID == userID {
		return nil, apperr.Validation("cannot add yourself as a contact")
	}

	target, err := s.profiles.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contact profile not found")
		}
		return nil, apperr.Internal("failed to load contact profile", err)
	}

	edge := &Contact{UserID: userID, ContactID: contactID, Status: StatusAccepted}
	if err := s.repo.Create(ctx, edge); err != nil {
		// The unique index on (user_id, contact_id) turns a racing
		// duplicate into an insert error; look the row up to tell a
		// real failure from an existing edge.
		if existing, getErr := s.repo.Get(ctx, userID, contactID); getErr == nil && existing != nil {
			return nil, apperr.Conflict("contact already exists")
		}
		return nil, apperr.Internal("failed to add contact", err)
	}

	return &ContactWithProfile{Contact: *edge, Profile: *target}, nil
}

// Remove deletes the edge owned by userID. Removing an absent edge is
// NotFound so callers can detect the no-op.
func (s *Service) Remove(ctx context.Context, userID, contactID uint64) error {
	n, err := s.repo.Delete(ctx, userID, contactID)
	if err != nil {
		return apperr.Internal("failed to remove contact", err)
	}
	if n == 0 {
		return apperr.NotFound("contact not found")
	}
	return nil
}
