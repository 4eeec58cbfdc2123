package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type UserStore interface {
	Create(ctx context.Context, user User, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, string, error)
	List(ctx context.Context) ([]User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	Get(ctx context.Context, sid string) (SessionRecord, error)
	Delete(ctx context.Context, sid string) error
}

// Service wraps the identity concerns the handlers need: account creation,
// credential verification with token issuance, and bearer-token validation.
type Service struct {
	users      UserStore
	sessions   SessionStore
	jwt        *JWTManager
	sessionTTL time.Duration
	now        func() time.Time
}

type SignupInput struct {
	Name          string
	Email         string
	Password      string
	UserType      string
	CompanyName   string
	LicenseNumber string
}

func NewService(users UserStore, sessions SessionStore, jwtManager *JWTManager, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 720 * time.Hour
	}

	return &Service{
		users:      users,
		sessions:   sessions,
		jwt:        jwtManager,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	if s.users == nil {
		return User{}, fmt.Errorf("user store is not configured")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || !strings.Contains(in.Email, "@") {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return User{}, ErrInvalidInput
	}
	if !validUserType(in.UserType) {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		UID:       uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		UserType:  in.UserType,
		CreatedAt: s.now().UTC(),
	}
	switch in.UserType {
	case TypeBuilder:
		user.CompanyName = strings.TrimSpace(in.CompanyName)
	case TypeBroker:
		user.LicenseNumber = strings.TrimSpace(in.LicenseNumber)
	}

	created, err := s.users.Create(ctx, user, string(hash))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if s.users == nil || s.sessions == nil || s.jwt == nil {
		return AuthResult{}, fmt.Errorf("auth dependencies are not configured")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, passwordHash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return AuthResult{}, ErrUnauthorized
	}

	sid, err := newSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}

	session := SessionRecord{
		SID:       sid,
		UID:       user.UID,
		UserType:  user.UserType,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user.UID, sid, user.UserType)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	if s.users == nil {
		return nil, fmt.Errorf("user store is not configured")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) ValidateToken(ctx context.Context, raw string) (Identity, error) {
	if s.jwt == nil || s.sessions == nil {
		return Identity{}, fmt.Errorf("auth dependencies are not configured")
	}

	claims, err := s.jwt.ParseAccessToken(raw)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("get session: %w", err)
	}

	if session.UID != claims.UID || session.UserType != claims.UserType {
		return Identity{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return Identity{}, ErrUnauthorized
	}

	return Identity{
		UID:      claims.UID,
		SID:      claims.SID,
		UserType: claims.UserType,
	}, nil
}

func newSessionID() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
