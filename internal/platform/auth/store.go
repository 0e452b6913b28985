package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"emargement-backend/internal/platform/db"
)

type Account struct {
	ID           string
	PasswordHash string
	Role         Role
	IsDisabled   bool
	CreatedAt    time.Time
}

// AccountStore: Create/UpdateID は一意制約違反を ErrAlreadyExists で返すこと
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) (int64, error)
	UpdateID(ctx context.Context, oldID, newID string) (int64, error)
	// SetDisabled は対象が存在すれば 1 を返す（値が変わらなくても）
	SetDisabled(ctx context.Context, id string, disabled bool) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) AccountStore {
	return &Store{db: conn}
}

func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `
SELECT id, password_hash, role, is_disabled, created_at
FROM auth_accounts
WHERE id = ?
LIMIT 1
`
	var (
		a             Account
		roleStr       string
		isDisabledInt int
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID,
		&a.PasswordHash,
		&roleStr,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Role, _ = ParseRole(roleStr)
	a.IsDisabled = isDisabledInt != 0
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_accounts (id, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, 0, ?)
`
	_, err := s.db.ExecContext(ctx, q, a.ID, a.PasswordHash, a.Role.String(), a.CreatedAt)
	if db.IsDuplicateKey(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM auth_accounts WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateID: PK変更。存在確認と更新を同じTxで行う
func (s *Store) UpdateID(ctx context.Context, oldID, newID string) (int64, error) {
	var n int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM auth_accounts WHERE id = ? FOR UPDATE`, oldID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE auth_accounts SET id = ? WHERE id = ?`, newID, oldID)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return ErrAlreadyExists
			}
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// SetDisabled: MySQL は値が同じだと RowsAffected=0 なので、存在確認を同じTxで行う
func (s *Store) SetDisabled(ctx context.Context, id string, disabled bool) (int64, error) {
	var n int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM auth_accounts WHERE id = ? FOR UPDATE`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE auth_accounts SET is_disabled = ? WHERE id = ?`, disabled, id); err != nil {
			return err
		}
		n = 1
		return nil
	})
	return n, err
}
