package contacts

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// List returns the user's edges newest-first.
func (r *Repo) List(ctx context.Context, userID uint64) ([]Contact, error) {
	var rows []Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) ListContactIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&Contact{}).
		Where("user_id = ?", userID).
		Pluck("contact_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repo) Get(ctx context.Context, userID, contactID uint64) (*Contact, error) {
	var c Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Create(ctx context.Context, c *Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Delete removes the edge scoped to userID and reports how many rows
// went away, so callers can tell a no-op from a removal.
func (r *Repo) Delete(ctx context.Context, userID, contactID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Delete(&Contact{})
	return res.RowsAffected, res.Error
}
