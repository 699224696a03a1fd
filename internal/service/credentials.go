package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
	"github.com/iliyamo/design-studio/internal/utils"
)

// Identity is a federated identity asserted by an external provider.
type Identity struct {
	Email         string
	Name          string
	EmailVerified bool
}

// IdentityVerifier exchanges an external credential for an identity.
type IdentityVerifier interface {
	VerifyCredential(ctx context.Context, credential string) (Identity, error)
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        model.User `json:"user"`
	// Created is set when the sign-in registered a new account.
	Created bool `json:"-"`
}

// RegisterInput is the body of a registration.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials issues and verifies bearer tokens and owns account creation.
type Credentials struct {
	users      UserStore
	secret     string
	ttl        time.Duration
	bcryptCost int
	identity   IdentityVerifier
	log        *zap.Logger
}

func NewCredentials(users UserStore, secret string, ttl time.Duration, bcryptCost int, identity IdentityVerifier, log *zap.Logger) *Credentials {
	return &Credentials{users: users, secret: secret, ttl: ttl, bcryptCost: bcryptCost, identity: identity, log: log}
}

// Issue signs a token for userID.
func (s *Credentials) Issue(userID string) (utils.AccessToken, error) {
	tok, err := utils.IssueToken(s.secret, userID, s.ttl)
	if err != nil {
		return utils.AccessToken{}, internal("issue token failed", err)
	}
	return tok, nil
}

// Verify returns the subject of a valid token.
func (s *Credentials) Verify(raw string) (string, error) {
	sub, err := utils.VerifyToken(s.secret, raw)
	switch {
	case err == nil:
		return sub, nil
	case errors.Is(err, utils.ErrTokenExpired):
		return "", newError(KindAuth, "session expired", err)
	}
	return "", newError(KindAuth, "invalid credentials", err)
}

// Resolve loads the user behind a verified subject.
func (s *Credentials) Resolve(ctx context.Context, userID string) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, notFound("user not found")
		}
		return model.User{}, internal("load user failed", err)
	}
	return u, nil
}

// Authenticate verifies raw and resolves its user.  A token whose user no
// longer exists is an authentication failure.
func (s *Credentials) Authenticate(ctx context.Context, raw string) (model.User, error) {
	sub, err := s.Verify(raw)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.Resolve(ctx, sub)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return model.User{}, newError(KindAuth, "user not found", err)
		}
		return model.User{}, err
	}
	return u, nil
}

// Register creates a regular account with the default quota.
func (s *Credentials) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return AuthResult{}, validationError("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, validationError("invalid email address")
	}
	u, err := s.createUser(ctx, username, email, in.Password, false, false)
	if err != nil {
		return AuthResult{}, err
	}
	return s.result(u, true)
}

// Login checks a username and password.
func (s *Credentials) Login(ctx context.Context, username, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResult{}, validationError("username and password are required")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, newError(KindAuth, "invalid credentials", nil)
		}
		return AuthResult{}, internal("load user failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, newError(KindAuth, "invalid credentials", nil)
	}
	return s.result(u, false)
}

// LoginWithGoogle signs in the account owning the verified email, creating
// one on first use.
func (s *Credentials) LoginWithGoogle(ctx context.Context, credential string) (AuthResult, error) {
	if strings.TrimSpace(credential) == "" {
		return AuthResult{}, validationError("google credential is required")
	}
	if s.identity == nil {
		return AuthResult{}, newError(KindUnavailable, "google sign-in is not configured", nil)
	}
	id, err := s.identity.VerifyCredential(ctx, credential)
	if err != nil {
		s.log.Warn("google credential rejected", zap.Error(err))
		return AuthResult{}, newError(KindAuth, "google sign-in failed", err)
	}
	if !id.EmailVerified || id.Email == "" {
		return AuthResult{}, validationError("google account email is not verified")
	}
	email := strings.ToLower(strings.TrimSpace(id.Email))

	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return s.result(u, false)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, internal("load user failed", err)
	}

	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	username := fmt.Sprintf("%s_%04d", local, rand.Intn(10000))
	password, err := utils.RandomHex(24)
	if err != nil {
		return AuthResult{}, internal("generate password failed", err)
	}
	u, err = s.createUser(ctx, username, email, password, false, true)
	if err != nil {
		return AuthResult{}, err
	}
	return s.result(u, true)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
func (s *Credentials) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if email == "" {
		email = username + "@localhost"
	}
	u, err := s.createUser(ctx, username, strings.ToLower(email), password, true, true)
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return nil
}

func (s *Credentials) createUser(ctx context.Context, username, email, password string, admin, verified bool) (model.User, error) {
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, internal("hash password failed", err)
	}
	u := model.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		IsAdmin:       admin,
		DesignsLimit:  model.DefaultDesignsLimit,
		EmailVerified: verified,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, validationError("user already exists")
		}
		return model.User{}, internal("create user failed", err)
	}
	return u, nil
}

func (s *Credentials) result(u model.User, created bool) (AuthResult, error) {
	tok, err := s.Issue(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{AccessToken: tok.Token, TokenType: "bearer", ExpiresAt: tok.Exp, User: u, Created: created}, nil
}
