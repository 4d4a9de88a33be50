// Package presence tracks online/away/offline status via client
// heartbeats. There is no server-side expiry sweep: a client that
// vanishes without its unload handler leaves "online" in the profile
// row. Readers compensate at read time — a stored online/away is only
// trusted while last_seen (or a redis liveness key) is within the
// stale window.
package presence

import (
	"context"
	"log"
	"time"

	"github.com/plantpulse/messaging/internal/apperr"
	"github.com/plantpulse/messaging/internal/profiles"
	"github.com/plantpulse/messaging/internal/store/redisstore"
)

type Service struct {
	profiles   *profiles.Repo
	live       *redisstore.Store // optional; nil falls back to the clock check
	staleAfter time.Duration
}

func NewService(profileRepo *profiles.Repo, live *redisstore.Store, staleAfter time.Duration) *Service {
	if staleAfter <= 0 {
		staleAfter = 90 * time.Second
	}
	return &Service{profiles: profileRepo, live: live, staleAfter: staleAfter}
}

// Heartbeat upserts the caller's status and last_seen. Accepted
// statuses are exactly online, away and offline.
func (s *Service) Heartbeat(ctx context.Context, userID uint64, status string) (*profiles.Profile, error) {
	if !profiles.ValidStatus(status) {
		return nil, apperr.Validation("invalid status, must be online, away or offline")
	}

	now := time.Now()
	n, err := s.profiles.UpdatePresence(ctx, userID, status, now)
	if err != nil {
		return nil, apperr.Internal("failed to update presence", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("profile not found")
	}

	if s.live != nil {
		if status == profiles.StatusOffline {
			if err := s.live.DeletePresence(ctx, userID); err != nil {
				log.Printf("presence: drop liveness key for %d: %v", userID, err)
			}
		} else if err := s.live.SetPresence(ctx, userID, status, s.staleAfter); err != nil {
			// best effort, the clock check covers a missing key
			log.Printf("presence: set liveness key for %d: %v", userID, err)
		}
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load profile", err)
	}
	return p, nil
}

// EffectiveStatus derives the status readers should see. A stored
// online/away is reported offline once stale.
func (s *Service) EffectiveStatus(ctx context.Context, p *profiles.Profile) string {
	if p.Status == profiles.StatusOffline || p.Status == "" {
		return profiles.StatusOffline
	}
	if s.live != nil {
		if _, ok, err := s.live.GetPresence(ctx, p.ID); err == nil && ok {
			return p.Status
		}
	}
	if time.Since(p.LastSeen) > s.staleAfter {
		return profiles.StatusOffline
	}
	return p.Status
}

// Annotate rewrites Status in place to the effective value for a batch
// of profiles about to go out on the wire.
func (s *Service) Annotate(ctx context.Context, ps []profiles.Profile) {
	for i := range ps {
		ps[i].Status = s.EffectiveStatus(ctx, &ps[i])
	}
}
