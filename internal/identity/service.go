// ABOUTME: Identity service: registration, login, profile updates, contacts
// ABOUTME: Passwords are bcrypt-hashed; every success path issues a fresh token

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/ripple/internal/auth"
	"github.com/2389/ripple/internal/store"
)

// Credential errors. Both map to the same client-facing message so a failed
// login does not reveal whether the email is registered.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service manages user accounts and token issuance.
type Service struct {
	store    store.Store
	verifier *auth.JWTVerifier
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates an identity service. Pass nil logger for default.
func NewService(st store.Store, verifier *auth.JWTVerifier, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		verifier: verifier,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "identity"),
	}
}

// Register creates an account and returns the profile with a signed token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*store.UserProfile, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user := &store.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", email)
	return user.Profile(), token, nil
}

// Login verifies the credentials and returns the profile with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*store.UserProfile, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user.Profile(), token, nil
}

// UpdateProfile changes the user's display fields and re-issues the token so
// the identity claims it carries stay in sync with the stored profile.
// Empty fields are left unchanged.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, avatar string) (*store.UserProfile, string, error) {
	user, err := s.store.UpdateUserProfile(ctx, userID, name, avatar)
	if err != nil {
		return nil, "", fmt.Errorf("updating profile: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("profile updated", "user_id", userID)
	return user.Profile(), token, nil
}

// Contacts returns every registered user except the caller.
func (s *Service) Contacts(ctx context.Context, userID string) ([]*store.UserProfile, error) {
	contacts, err := s.store.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}

func (s *Service) issueToken(user *store.User) (string, error) {
	token, err := s.verifier.Generate(&auth.Identity{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}
