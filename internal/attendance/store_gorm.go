package attendance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// recordModel: Postgres 用。uq_attendance_day が1日1件を保証する
type recordModel struct {
	ID            string    `gorm:"primaryKey;size:26"`
	LearnerID     string    `gorm:"size:128;not null;uniqueIndex:uq_attendance_day,priority:1"`
	SessionID     string    `gorm:"size:128;not null;uniqueIndex:uq_attendance_day,priority:2"`
	SignatureBlob string    `gorm:"type:text;not null"`
	CapturedAt    time.Time `gorm:"not null;index:idx_attendance_captured_at"`
	SignedOn      time.Time `gorm:"type:date;not null;uniqueIndex:uq_attendance_day,priority:3"`
}

func (recordModel) TableName() string { return "attendance_records" }

func (m recordModel) toModel() Record {
	rec := Record{
		ID:            m.ID,
		LearnerID:     m.LearnerID,
		SessionID:     m.SessionID,
		SignatureBlob: m.SignatureBlob,
		SignedOn:      m.SignedOn.Format(DateLayout),
	}
	if !m.CapturedAt.IsZero() {
		rec.CapturedAt = m.CapturedAt.UTC()
	}
	return rec
}

// GormStore is the Postgres-backed Store. The *gorm.DB must be opened with TranslateError.
type GormStore struct {
	db  *gorm.DB
	ids IDGen
}

var _ Store = (*GormStore)(nil)

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn, ids: ulidGen{}}
}

func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&recordModel{})
}

func (s *GormStore) Insert(ctx context.Context, rec *Record) error {
	signedOn, err := time.Parse(DateLayout, rec.SignedOn)
	if err != nil {
		return err
	}
	id, err := s.ids.New(rec.CapturedAt)
	if err != nil {
		return err
	}
	m := recordModel{
		ID:            id,
		LearnerID:     rec.LearnerID,
		SessionID:     rec.SessionID,
		SignatureBlob: rec.SignatureBlob,
		CapturedAt:    rec.CapturedAt.UTC(),
		SignedOn:      signedOn,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrRecordExists
		}
		return err
	}
	rec.ID = id
	return nil
}

func (s *GormStore) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(&recordModel{})
		if q.Search != "" {
			p := likePattern(q.Search)
			tx = tx.Where("LOWER(learner_id) LIKE ? OR LOWER(session_id) LIKE ?", p, p)
		}
		return tx
	}

	var (
		rows  []recordModel
		total int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scope).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(scope).
			Order("captured_at DESC, id DESC").
			Limit(q.Limit).
			Offset(q.Offset()).
			Find(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]Record, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toModel())
	}
	return out, total, nil
}

func (s *GormStore) Latest(ctx context.Context, learnerID, sessionID string) (Record, error) {
	var m recordModel
	err := s.db.WithContext(ctx).
		Where("learner_id = ? AND session_id = ?", learnerID, sessionID).
		Order("captured_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return m.toModel(), nil
}

func (s *GormStore) HasLearner(ctx context.Context, learnerID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&recordModel{}).
		Where("learner_id = ?", learnerID).
		Count(&n).Error
	return n > 0, err
}
