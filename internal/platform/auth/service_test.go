package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MemoryStore, *JWT) {
	t.Helper()
	store := NewMemoryStore()
	tokens := NewJWT(testSecret, time.Hour)
	return NewService(store, tokens), store, tokens
}

func TestSignupThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, store, tokens := newTestService(t)

	tok, role, err := svc.Signup(ctx, "hanine_benali", "correct horse", "learner")
	require.NoError(t, err)
	assert.Equal(t, RoleLearner, role)

	id, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "hanine_benali", id.SubjectID)

	acct, err := store.GetByID(ctx, "hanine_benali")
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.NotEqual(t, "correct horse", acct.PasswordHash, "password is stored hashed")

	tok, role, err = svc.Login(ctx, "hanine_benali", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, RoleLearner, role)
	assert.NotEmpty(t, tok)
}

func TestSignup_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, _, err := svc.Signup(ctx, "x", "password1", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, _, err = svc.Signup(ctx, "dup", "password1", "admin")
	require.NoError(t, err)
	_, _, err = svc.Signup(ctx, "dup", "password2", "lead")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	_, _, err := svc.Login(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Signup(ctx, "lead1", "password1", "lead")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "lead1", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.SetDisabled(ctx, "lead1", true))
	require.NoError(t, svc.SetDisabled(ctx, "lead1", true), "disabling twice is not an error")
	acct, err := store.GetByID(ctx, "lead1")
	require.NoError(t, err)
	assert.True(t, acct.IsDisabled)
	_, _, err = svc.Login(ctx, "lead1", "password1")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	require.NoError(t, svc.SetDisabled(ctx, "lead1", false))
	_, _, err = svc.Login(ctx, "lead1", "password1")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetDisabled(ctx, "ghost", true), ErrNotFound)
}

func TestDeleteAndChangeID(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	_, _, err := svc.Signup(ctx, "a1", "password1", "learner")
	require.NoError(t, err)
	_, _, err = svc.Signup(ctx, "b1", "password1", "learner")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangeID(ctx, "a1", "b1"), ErrAlreadyExists)
	assert.ErrorIs(t, svc.ChangeID(ctx, "zz", "yy"), ErrNotFound)
	require.NoError(t, svc.ChangeID(ctx, "a1", "a2"))

	acct, err := store.GetByID(ctx, "a2")
	require.NoError(t, err)
	require.NotNil(t, acct)

	require.NoError(t, svc.Delete(ctx, "a2"))
	assert.ErrorIs(t, svc.Delete(ctx, "a2"), ErrNotFound)
}

func TestSignupAndChangeID_RefuseIDsWithHistory(t *testing.T) {
	ctx := context.Background()
	history := map[string]bool{"former": true}
	store := NewMemoryStore()
	svc := NewService(store, NewJWT(testSecret, time.Hour), WithIDInUse(func(_ context.Context, id string) (bool, error) {
		return history[id], nil
	}))

	_, _, err := svc.Signup(ctx, "former", "password1", "learner")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, _, err = svc.Signup(ctx, "fresh", "password1", "learner")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ChangeID(ctx, "fresh", "former"), ErrAlreadyExists)
	require.NoError(t, svc.ChangeID(ctx, "fresh", "fresh2"))

	boom := errors.New("store down")
	failing := NewService(store, NewJWT(testSecret, time.Hour), WithIDInUse(func(context.Context, string) (bool, error) {
		return false, boom
	}))
	_, _, err = failing.Signup(ctx, "other", "password1", "learner")
	assert.ErrorIs(t, err, boom)
	acct, err := store.GetByID(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, acct)
}
