// ABOUTME: Tests for registration, login, token re-issue, and contacts
// ABOUTME: Verifies issued tokens round-trip through the verifier

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/ripple/internal/auth"
	"github.com/2389/ripple/internal/store"
)

func newTestService(t *testing.T) (*Service, *auth.JWTVerifier) {
	t.Helper()
	st, err := store.NewSQLiteStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	return NewService(st, verifier, time.Hour, nil), verifier
}

func TestRegister_IssuesVerifiableToken(t *testing.T) {
	svc, verifier := newTestService(t)
	ctx := context.Background()

	profile, token, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Name)
	assert.NotEmpty(t, profile.ID)

	identity, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, identity.ID)
	assert.Equal(t, "ada", identity.Name)
	assert.Equal(t, "ada@example.com", identity.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "imposter", "ada@example.com", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_CorrectPassword(t *testing.T) {
	svc, verifier := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	profile, token, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, profile.ID)

	identity, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.ID)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, _, wrongPw := svc.Login(ctx, "ada@example.com", "nope")
	_, _, unknown := svc.Login(ctx, "ghost@example.com", "nope")

	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
}

func TestUpdateProfile_ReissuesTokenWithNewClaims(t *testing.T) {
	svc, verifier := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	profile, token, err := svc.UpdateProfile(ctx, registered.ID, "ada lovelace", "new.png")
	require.NoError(t, err)
	assert.Equal(t, "ada lovelace", profile.Name)
	assert.Equal(t, "new.png", profile.Avatar)

	identity, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada lovelace", identity.Name)
	assert.Equal(t, "new.png", identity.Avatar)
}

func TestUpdateProfile_EmptyFieldKeepsOldValue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	profile, _, err := svc.UpdateProfile(ctx, registered.ID, "", "only-avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Name)
	assert.Equal(t, "only-avatar.png", profile.Avatar)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.UpdateProfile(context.Background(), "missing", "name", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContacts_ExcludesCaller(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ada, _, err := svc.Register(ctx, "ada", "ada@example.com", "pw")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "cal", "cal@example.com", "pw")
	require.NoError(t, err)

	contacts, err := svc.Contacts(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	for _, c := range contacts {
		assert.NotEqual(t, ada.ID, c.ID)
	}
}
