// ABOUTME: Tests for user persistence
// ABOUTME: Covers creation, duplicate emails, profile updates, and contacts

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_AndLookups(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "Ada", "ada@example.com")

	byID, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)
	assert.Equal(t, "ada@example.com", byID.Email)

	byEmail, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "Ada", "ada@example.com")

	now := time.Now()
	err := s.CreateUser(ctx, &User{
		ID:           uuid.New().String(),
		Name:         "Imposter",
		Email:        "ada@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestGetUser_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserProfile(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "Ada", "ada@example.com")

	updated, err := s.UpdateUserProfile(ctx, user.ID, "Ada L.", "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "https://example.com/a.png", updated.Avatar)

	// Empty fields leave the current values in place
	updated, err = s.UpdateUserProfile(ctx, user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "https://example.com/a.png", updated.Avatar)
}

func TestUpdateUserProfile_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.UpdateUserProfile(context.Background(), "missing", "Name", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContacts_ExcludesSelf(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ada := seedUser(t, s, "Ada", "ada@example.com")
	seedUser(t, s, "Bob", "bob@example.com")
	seedUser(t, s, "Cyd", "cyd@example.com")

	contacts, err := s.ListContacts(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Bob", contacts[0].Name)
	assert.Equal(t, "Cyd", contacts[1].Name)
	for _, c := range contacts {
		assert.NotEqual(t, ada.ID, c.ID)
	}
}
