package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

// User types accepted at signup. Builder accounts carry a company name,
// broker accounts a license number.
const (
	TypeUser    = "user"
	TypeBroker  = "broker"
	TypeBuilder = "builder"
	TypeAdmin   = "admin"
)

type User struct {
	UID           string
	Name          string
	Email         string
	UserType      string
	CompanyName   string
	LicenseNumber string
	CreatedAt     time.Time
}

type SessionRecord struct {
	SID       string
	UID       string
	UserType  string
	ExpiresAt time.Time
}

type AccessClaims struct {
	UID       string
	SID       string
	UserType  string
	ExpiresAt time.Time
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

func validUserType(userType string) bool {
	switch userType {
	case TypeUser, TypeBroker, TypeBuilder, TypeAdmin:
		return true
	default:
		return false
	}
}
