package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) getByPair(ctx context.Context, low, high uint64) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreateConversation returns the single conversation for the
// unordered pair (low, high), creating it with both participant rows
// when absent. Concurrent first-open from both sides is resolved by
// the unique pair index: the loser's insert fails and the existing row
// is fetched instead.
func (r *Repo) GetOrCreateConversation(ctx context.Context, low, high uint64, now time.Time) (*Conversation, error) {
	if c, err := r.getByPair(ctx, low, high); err == nil {
		return c, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := NewConversationID()
	if err != nil {
		return nil, err
	}
	conv := &Conversation{ID: id, UserLowID: low, UserHighID: high, CreatedAt: now, UpdatedAt: now}

	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		parts := []Participant{
			{ConversationID: conv.ID, UserID: low, LastReadAt: now},
			{ConversationID: conv.ID, UserID: high, LastReadAt: now},
		}
		return tx.Create(&parts).Error
	})
	if txErr == nil {
		return conv, nil
	}

	// Lost the race: the other side created it first.
	if c, getErr := r.getByPair(ctx, low, high); getErr == nil {
		return c, nil
	}
	return nil, txErr
}

func (r *Repo) GetParticipant(ctx context.Context, conversationID string, userID uint64) (*Participant, error) {
	var p Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListParticipantsForUser(ctx context.Context, userID uint64) ([]Participant, error) {
	var rows []Participant
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) OtherParticipant(ctx context.Context, conversationID string, userID uint64) (*Participant, error) {
	var p Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id <> ?", conversationID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TouchLastRead advances the participant's read cursor. Only the
// fetching side's cursor moves; the other participant is untouched.
func (r *Repo) TouchLastRead(ctx context.Context, conversationID string, userID uint64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", now).Error
}

func (r *Repo) TouchConversation(ctx context.Context, conversationID string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", now).Error
}

// visible scopes a message query to rows a reader may see: not soft
// deleted, not past the retention horizon.
func visible(q *gorm.DB, now time.Time) *gorm.DB {
	return q.Where("deleted_at IS NULL AND expires_at > ?", now)
}

// ListMessagesDesc returns visible messages newest-first for
// pagination; the service reverses before returning. A non-zero before
// restricts to rows strictly older than it.
func (r *Repo) ListMessagesDesc(ctx context.Context, conversationID string, limit int, before time.Time, now time.Time) ([]Message, error) {
	q := visible(r.db.WithContext(ctx).Where("conversation_id = ?", conversationID), now).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}
	var msgs []Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) LastMessage(ctx context.Context, conversationID string, now time.Time) (*Message, error) {
	var m Message
	err := visible(r.db.WithContext(ctx).Where("conversation_id = ?", conversationID), now).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountUnread counts visible messages behind nobody's cursor but this
// participant's: newer than lastRead and sent by the other side.
func (r *Repo) CountUnread(ctx context.Context, conversationID string, userID uint64, lastRead, now time.Time) (int64, error) {
	var n int64
	err := visible(r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND created_at > ?", conversationID, userID, lastRead), now).
		Count(&n).Error
	return n, err
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repo) GetMessage(ctx context.Context, id uint64) (*Message, error) {
	var m Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkMessageRead sets status to read. The only transition the server
// writes; re-marking a read message is a no-op by value.
func (r *Repo) MarkMessageRead(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", id).
		Update("status", StatusRead).Error
}

// SoftDeleteMessage marks the message deleted, scoped to the sender.
// Returns rows affected so the service can distinguish an already
// deleted row.
func (r *Repo) SoftDeleteMessage(ctx context.Context, id, senderID uint64, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ? AND sender_id = ? AND deleted_at IS NULL", id, senderID).
		Update("deleted_at", now)
	return res.RowsAffected, res.Error
}

func (r *Repo) AddAttachment(ctx context.Context, a *Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repo) ListAttachments(ctx context.Context, messageIDs []uint64) (map[uint64][]Attachment, error) {
	if len(messageIDs) == 0 {
		return map[uint64][]Attachment{}, nil
	}
	var rows []Attachment
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIDs).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64][]Attachment)
	for _, a := range rows {
		out[a.MessageID] = append(out[a.MessageID], a)
	}
	return out, nil
}

// PurgeExpired hard-deletes messages past the retention horizon,
// together with their attachment rows. Soft-deleted rows stay hidden
// until their own horizon passes. Driven by cmd/retention.
func (r *Repo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&Message{}).
			Where("expires_at <= ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("message_id IN ?", ids).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&Message{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
