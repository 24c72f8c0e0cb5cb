package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/gotodo/apiserver/internal/auth"
	"github.com/gotodo/apiserver/internal/store"
	"github.com/gotodo/apiserver/types"
)

const (
	minPasswordLength = 6

	// bcrypt rejects passwords longer than 72 bytes.
	maxPasswordLength = 72
)

var (
	// ErrInvalidEmail is returned when a supplied email is not email-shaped.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrPasswordTooShort is returned when a supplied password is too short.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrPasswordTooLong is returned when a supplied password exceeds the
	// bcrypt input limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrInvalidCredentials is returned on login failure. It is deliberately
	// ambiguous: callers cannot tell an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when a presented token does not resolve to
	// a user, for any reason.
	ErrUnauthorized = errors.New("unauthorized")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateTokens(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases: registration, credential and token
// based lookup, and token lifecycle.
type UserService struct {
	repo   UserRepository
	tokens *auth.TokenManager
}

func NewUserService(repo UserRepository, tokens *auth.TokenManager) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

// Register creates a user from an email/password pair and issues a first auth
// token. Fails with store.ErrDuplicateEmail when the email is taken.
func (s *UserService) Register(ctx context.Context, email, password string) (types.User, string, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return types.User{}, "", err
	}
	if len(password) < minPasswordLength {
		return types.User{}, "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return types.User{}, "", ErrPasswordTooLong
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		return types.User{}, "", err
	}

	return s.AddToken(ctx, user)
}

// Login looks the user up by email and verifies the password. The single
// ErrInvalidCredentials failure covers both steps so the route cannot be used
// to enumerate accounts.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", ErrInvalidCredentials
		}
		return types.User{}, "", err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, "", ErrInvalidCredentials
	}

	return s.AddToken(ctx, user)
}

// GetByToken resolves a presented token to a user. Two sequential checks:
// first the signature is verified, then the token must still be a member of
// the user's stored token list, which is what makes logout effective while
// the signature remains structurally valid.
func (s *UserService) GetByToken(ctx context.Context, token string) (types.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return types.User{}, ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthorized
		}
		return types.User{}, err
	}

	if !user.HasToken(token) {
		return types.User{}, ErrUnauthorized
	}
	return user, nil
}

// AddToken issues a fresh auth token, appends it to the user's token list and
// persists the list.
func (s *UserService) AddToken(ctx context.Context, user types.User) (types.User, string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return types.User{}, "", err
	}

	user.Tokens = append(user.Tokens, types.UserToken{
		Purpose: types.TokenPurposeAuth,
		Token:   token,
	})
	user, err = s.repo.UpdateTokens(ctx, user)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// RemoveToken drops the matching entry from the user's token list and
// persists the list.
func (s *UserService) RemoveToken(ctx context.Context, user types.User, token string) error {
	kept := make([]types.UserToken, 0, len(user.Tokens))
	for _, entry := range user.Tokens {
		if entry.Token == token {
			continue
		}
		kept = append(kept, entry)
	}
	user.Tokens = kept

	_, err := s.repo.UpdateTokens(ctx, user)
	return err
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
