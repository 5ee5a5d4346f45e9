package cache

import (
	"context"
	"errors"
	"time"

	"bunah-checkout/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// farFuture stands in for "no expiry" so the column can stay NOT NULL.
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// DBStore keeps drafts in the checkout_drafts table so that any instance can
// confirm a session created by another one, including after a restart.
type DBStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewDBStore(db *gorm.DB, ttl time.Duration) *DBStore {
	return &DBStore{db: db, ttl: ttl, now: time.Now}
}

func (s *DBStore) Put(ctx context.Context, draft *model.OrderDraft) error {
	expires := farFuture
	if s.ttl > 0 {
		expires = s.now().Add(s.ttl)
	}

	row := &model.CheckoutDraft{
		ReferenceID: draft.ReferenceID,
		Payload:     draft,
		ExpiresAt:   expires,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at"}),
	}).Create(row).Error
}

func (s *DBStore) Get(ctx context.Context, referenceID string) (*model.OrderDraft, bool, error) {
	var row model.CheckoutDraft
	err := s.db.WithContext(ctx).
		Where("reference_id = ? AND expires_at > ?", referenceID, s.now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.Payload, row.Payload != nil, nil
}

func (s *DBStore) Delete(ctx context.Context, referenceID string) error {
	return s.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Delete(&model.CheckoutDraft{}).Error
}

func (s *DBStore) Sweep(ctx context.Context) (int, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&model.CheckoutDraft{})
	return int(result.RowsAffected), result.Error
}
