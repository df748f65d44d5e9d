// Package service contains application services for authentication, draw
// history and journaling.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/dailydeck/internal/crypto"
	"github.com/and161185/dailydeck/internal/errs"
	"github.com/and161185/dailydeck/internal/limiter"
	"github.com/and161185/dailydeck/internal/model"
	"github.com/and161185/dailydeck/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines authentication operations.
type AuthService interface {
	// Signup creates a new user with secure password hashing.
	Signup(ctx context.Context, email, password, firstName, lastName string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (tokens model.Tokens, user model.User, err error)
	// GetUser loads the account for an authenticated subject.
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Signup creates a new user record with a per-user auth salt.
func (s *AuthServiceImpl) Signup(ctx context.Context, email, password, firstName, lastName string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", errors.New("validation: empty email/password")
	}
	if !strings.Contains(email, "@") {
		return "", errors.New("validation: malformed email")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	pwdHash := pkgcrypto.HashPassword([]byte(password), saltAuth)

	u := &model.User{
		ID:        uid,
		Email:     email,
		PwdHash:   pwdHash,
		SaltAuth:  saltAuth,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ipHash := limiter.HashIP(ip)

	// Check if requests are currently allowed for this (email, ip).
	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		// Record failure; if threshold reached, return rate-limited.
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// wrong password and unknown email are indistinguishable to the caller
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// GetUser loads a user by id.
func (s *AuthServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	return s.users.GetByID(ctx, userID)
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
