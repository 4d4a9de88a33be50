package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/apperr"
)

const searchLimit = 20

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// Ensure guarantees a profile row exists for the identity. The default
// username is the email local-part. Safe under concurrent calls for the
// same identity: the insert ignores a duplicate id.
func (s *Service) Ensure(ctx context.Context, userID uint64, email string) (*Profile, error) {
	username := email
	if i := strings.Index(email, "@"); i > 0 {
		username = email[:i]
	}
	p := &Profile{
		ID:       userID,
		Username: username,
		FullName: username,
		Status:   StatusOnline,
		LastSeen: time.Now(),
	}
	if err := s.repo.CreateIfAbsent(ctx, p); err != nil {
		return nil, apperr.Internal("failed to ensure profile", err)
	}
	existing, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load profile", err)
	}
	return existing, nil
}

func (s *Service) Get(ctx context.Context, userID uint64) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal("failed to load profile", err)
	}
	return p, nil
}

// Search returns at most 20 profiles matching query, never including
// the requester.
func (s *Service) Search(ctx context.Context, requesterID uint64, query string) ([]Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query required")
	}
	rows, err := s.repo.Search(ctx, query, requesterID, searchLimit)
	if err != nil {
		return nil, apperr.Internal("profile search failed", err)
	}
	return rows, nil
}

// ListAvailable is the full directory minus the requester and their
// existing contacts, so the add-contact surface is never empty.
func (s *Service) ListAvailable(ctx context.Context, requesterID uint64, contactIDs []uint64) ([]Profile, error) {
	rows, err := s.repo.ListExcluding(ctx, requesterID, contactIDs)
	if err != nil {
		return nil, apperr.Internal("failed to list profiles", err)
	}
	return rows, nil
}

func (s *Service) UpdateUsername(ctx context.Context, userID uint64, username string) (*Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username must not be empty")
	}
	if err := s.repo.UpdateUsername(ctx, userID, username); err != nil {
		return nil, apperr.Internal("failed to update username", err)
	}
	return s.Get(ctx, userID)
}
