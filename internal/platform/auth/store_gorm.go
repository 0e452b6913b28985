package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type accountModel struct {
	ID           string    `gorm:"primaryKey;size:128"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         string    `gorm:"size:32;not null"`
	IsDisabled   bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (accountModel) TableName() string { return "auth_accounts" }

// GormStore is the Postgres account store.
type GormStore struct{ db *gorm.DB }

func NewGormStore(gdb *gorm.DB) *GormStore { return &GormStore{db: gdb} }

func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&accountModel{})
}

func (s *GormStore) GetByID(ctx context.Context, id string) (*Account, error) {
	var m accountModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	role, _ := ParseRole(m.Role)
	return &Account{
		ID:           m.ID,
		PasswordHash: m.PasswordHash,
		Role:         role,
		IsDisabled:   m.IsDisabled,
		CreatedAt:    m.CreatedAt,
	}, nil
}

func (s *GormStore) Create(ctx context.Context, a *Account) error {
	m := accountModel{
		ID:           a.ID,
		PasswordHash: a.PasswordHash,
		Role:         a.Role.String(),
		CreatedAt:    a.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

func (s *GormStore) Delete(ctx context.Context, id string) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&accountModel{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) UpdateID(ctx context.Context, oldID, newID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&accountModel{}).Where("id = ?", oldID).Update("id", newID)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return 0, ErrAlreadyExists
	}
	return res.RowsAffected, res.Error
}

func (s *GormStore) SetDisabled(ctx context.Context, id string, disabled bool) (int64, error) {
	res := s.db.WithContext(ctx).Model(&accountModel{}).Where("id = ?", id).Update("is_disabled", disabled)
	return res.RowsAffected, res.Error
}
