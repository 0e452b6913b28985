package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
)

// IDInUse は id が過去の記録（出席履歴など）に使われているかを返す
type IDInUse func(ctx context.Context, id string) (bool, error)

type Option func(*Service)

// WithIDInUse: 履歴が残っている id は signup / rename で再利用させない
func WithIDInUse(fn IDInUse) Option {
	return func(s *Service) { s.inUse = fn }
}

type Service struct {
	store  AccountStore
	tokens *JWT
	now    func() time.Time
	inUse  IDInUse
}

func NewService(store AccountStore, tokens *JWT, opts ...Option) *Service {
	s := &Service{store: store, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) checkReusable(ctx context.Context, id string) error {
	if s.inUse == nil {
		return nil
	}
	used, err := s.inUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrAlreadyExists
	}
	return nil
}

// Login は {sub, role, exp} を載せたトークンを返す
func (s *Service) Login(ctx context.Context, id, password string) (string, Role, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", RoleNone, err
	}
	if acct == nil {
		return "", RoleNone, ErrInvalidCredentials
	}
	if acct.IsDisabled {
		return "", RoleNone, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", RoleNone, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acct.ID, acct.Role)
	if err != nil {
		return "", RoleNone, err
	}
	return token, acct.Role, nil
}

// Signup: 登録後そのままログイン状態のトークンを返す
func (s *Service) Signup(ctx context.Context, id, password, roleStr string) (string, Role, error) {
	role, ok := ParseRole(roleStr)
	if !ok {
		return "", RoleNone, ErrInvalidRole
	}
	if err := s.checkReusable(ctx, id); err != nil {
		return "", RoleNone, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", RoleNone, err
	}

	// 重複は一意制約で検出する（事前SELECTはしない）
	if err := s.store.Create(ctx, &Account{
		ID:           id,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}); err != nil {
		return "", RoleNone, err
	}

	token, err := s.tokens.Issue(id, role)
	if err != nil {
		return "", RoleNone, err
	}
	return token, role, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ChangeID(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return ErrAlreadyExists
	}
	if err := s.checkReusable(ctx, newID); err != nil {
		return err
	}
	updated, err := s.store.UpdateID(ctx, oldID, newID)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDisabled: 無効化したアカウントはログインできない（発行済みトークンは期限まで有効）
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	n, err := s.store.SetDisabled(ctx, id, disabled)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
