package profiles

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Profile, error) {
	var p Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]Profile, error) {
	var rows []Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint64]Profile, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// CreateIfAbsent inserts the profile unless a row with the same id
// already exists. Concurrent callers racing on the same id all succeed.
func (r *Repo) CreateIfAbsent(ctx context.Context, p *Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
}

// Search matches the query as a case-insensitive substring of username
// or full_name, excluding excludeID.
func (r *Repo) Search(ctx context.Context, query string, excludeID uint64, limit int) ([]Profile, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var rows []Profile
	err := r.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListExcluding returns the directory minus excludeID and excludeIDs,
// ordered by full name.
func (r *Repo) ListExcluding(ctx context.Context, excludeID uint64, excludeIDs []uint64) ([]Profile, error) {
	q := r.db.WithContext(ctx).Where("id <> ?", excludeID)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var rows []Profile
	if err := q.Order("full_name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) UpdateUsername(ctx context.Context, id uint64, username string) error {
	return r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Update("username", username).Error
}

// UpdatePresence writes the presence-owned fields. Used by the
// presence tracker only.
func (r *Repo) UpdatePresence(ctx context.Context, id uint64, status string, lastSeen time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    status,
			"last_seen": lastSeen,
		})
	return res.RowsAffected, res.Error
}
