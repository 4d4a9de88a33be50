package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/apperr"
	"github.com/plantpulse/messaging/internal/profiles"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type Service struct {
	repo      *Repo
	profiles  *profiles.Repo
	retention time.Duration
}

func NewService(repo *Repo, profileRepo *profiles.Repo, retention time.Duration) *Service {
	if retention <= 0 {
		retention = 60 * 24 * time.Hour
	}
	return &Service{repo: repo, profiles: profileRepo, retention: retention}
}

// requireParticipant is the authorization gate for every conversation
// scoped operation.
func (s *Service) requireParticipant(ctx context.Context, conversationID string, userID uint64) (*Participant, error) {
	p, err := s.repo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Forbidden("not a participant")
		}
		return nil, apperr.Internal("failed to load participant", err)
	}
	return p, nil
}

// GetOrCreate returns the canonical conversation id for the unordered
// (userID, otherID) pair, creating it on first contact. Idempotent in
// either call order, including concurrent first opens.
func (s *Service) GetOrCreate(ctx context.Context, userID, otherID uint64) (string, error) {
	if otherID == 0 {
		return "", apperr.Validation("contact id required")
	}
	if otherID == userID {
		return "", apperr.Validation("cannot start a conversation with yourself")
	}
	if _, err := s.profiles.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("contact profile not found")
		}
		return "", apperr.Internal("failed to load contact profile", err)
	}

	low, high := userID, otherID
	if low > high {
		low, high = high, low
	}
	conv, err := s.repo.GetOrCreateConversation(ctx, low, high, time.Now())
	if err != nil {
		return "", apperr.Internal("failed to get or create conversation", err)
	}
	return conv.ID, nil
}

// List returns the caller's conversations, most recently updated
// first, each with the other side's profile, the latest visible
// message and the caller's unread count.
func (s *Service) List(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	parts, err := s.repo.ListParticipantsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list conversations", err)
	}

	now := time.Now()
	out := make([]ConversationSummary, 0, len(parts))
	for _, p := range parts {
		conv, err := s.repo.GetConversation(ctx, p.ConversationID)
		if err != nil {
			return nil, apperr.Internal("failed to load conversation", err)
		}

		summary := ConversationSummary{
			ID:        conv.ID,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		}

		if other, err := s.repo.OtherParticipant(ctx, conv.ID, userID); err == nil {
			if prof, err := s.profiles.GetByID(ctx, other.UserID); err == nil {
				summary.OtherParticipant = prof
			}
		}

		last, err := s.repo.LastMessage(ctx, conv.ID, now)
		if err == nil {
			withSender := MessageWithSender{Message: *last, Attachments: []Attachment{}}
			if prof, perr := s.profiles.GetByID(ctx, last.SenderID); perr == nil {
				withSender.Sender = *prof
			}
			summary.LastMessage = &withSender
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load last message", err)
		}

		unread, err := s.repo.CountUnread(ctx, conv.ID, userID, p.LastReadAt, now)
		if err != nil {
			return nil, apperr.Internal("failed to count unread", err)
		}
		summary.UnreadCount = unread

		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// ListMessages returns visible messages in ascending chronological
// order, paginated backwards from before when given. As a side effect
// the caller's read cursor advances to now: opening the thread marks
// everything currently visible as read.
func (s *Service) ListMessages(ctx context.Context, conversationID string, requesterID uint64, limit int, before time.Time) ([]MessageWithSender, error) {
	if _, err := s.requireParticipant(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	now := time.Now()
	desc, err := s.repo.ListMessagesDesc(ctx, conversationID, limit, before, now)
	if err != nil {
		return nil, apperr.Internal("failed to list messages", err)
	}

	out, err := s.joinSenders(ctx, desc)
	if err != nil {
		return nil, err
	}
	// fetched newest-first for pagination, returned oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	if err := s.repo.TouchLastRead(ctx, conversationID, requesterID, now); err != nil {
		return nil, apperr.Internal("failed to advance read cursor", err)
	}
	return out, nil
}

func (s *Service) joinSenders(ctx context.Context, msgs []Message) ([]MessageWithSender, error) {
	ids := make([]uint64, 0, len(msgs))
	msgIDs := make([]uint64, 0, len(msgs))
	seen := map[uint64]bool{}
	for _, m := range msgs {
		msgIDs = append(msgIDs, m.ID)
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}

	senders := map[uint64]profiles.Profile{}
	if len(ids) > 0 {
		var err error
		senders, err = s.profiles.GetByIDs(ctx, ids)
		if err != nil {
			return nil, apperr.Internal("failed to load sender profiles", err)
		}
	}
	attachments, err := s.repo.ListAttachments(ctx, msgIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load attachments", err)
	}

	out := make([]MessageWithSender, 0, len(msgs))
	for _, m := range msgs {
		att := attachments[m.ID]
		if att == nil {
			att = []Attachment{}
		}
		out = append(out, MessageWithSender{Message: m, Sender: senders[m.SenderID], Attachments: att})
	}
	return out, nil
}

// Send inserts a message from senderID. Content must be non-empty
// after trimming. Delivery is pull-based: the other side sees it on
// their next poll.
func (s *Service) Send(ctx context.Context, conversationID string, senderID uint64, content string, replyTo *uint64) (*MessageWithSender, error) {
	if _, err := s.requireParticipant(ctx, conversationID, senderID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content required")
	}

	now := time.Now()
	msg := &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    MessageTypeText,
		Status:         StatusSent,
		ReplyTo:        replyTo,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.retention),
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Internal("failed to send message", err)
	}
	if err := s.repo.TouchConversation(ctx, conversationID, now); err != nil {
		return nil, apperr.Internal("failed to touch conversation", err)
	}

	withSender := MessageWithSender{Message: *msg, Attachments: []Attachment{}}
	if prof, err := s.profiles.GetByID(ctx, senderID); err == nil {
		withSender.Sender = *prof
	}
	return &withSender, nil
}

// MarkRead sets the message status to read. The requester must be a
// participant of the message's conversation.
func (s *Service) MarkRead(ctx context.Context, messageID, requesterID uint64) error {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Internal("failed to load message", err)
	}
	if _, err := s.requireParticipant(ctx, msg.ConversationID, requesterID); err != nil {
		return err
	}
	if err := s.repo.MarkMessageRead(ctx, messageID); err != nil {
		return apperr.Internal("failed to mark message read", err)
	}
	return nil
}

// SoftDelete hides the message. Only the sender may delete; anyone
// else gets Forbidden with no state change. Deleting an already
// deleted message is a no-op.
func (s *Service) SoftDelete(ctx context.Context, messageID, requesterID uint64) error {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Internal("failed to load message", err)
	}
	if msg.SenderID != requesterID {
		return apperr.Forbidden("only the sender can delete a message")
	}
	if _, err := s.repo.SoftDeleteMessage(ctx, messageID, requesterID, time.Now()); err != nil {
		return apperr.Internal("failed to delete message", err)
	}
	return nil
}
