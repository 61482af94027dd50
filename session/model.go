package session

import (
	"errors"
	"strings"
)

// Role is the coarse role of a SmartWork user.
type Role string

const (
	// RoleAdmin sees organisation-wide dashboards and user management.
	RoleAdmin Role = "admin"
	// RoleManager sees team dashboards.
	RoleManager Role = "manager"
	// RoleEmployee sees personal dashboards.
	RoleEmployee Role = "employee"
)

// ErrInvalidRole is returned for roles outside admin, manager and employee.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes s into a Role. The legacy "user" role maps to employee.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleManager):
		return RoleManager, nil
	case string(RoleEmployee), "user":
		return RoleEmployee, nil
	default:
		return "", ErrInvalidRole
	}
}

// User is the profile snapshot cached next to the token.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"full_name,omitempty"`
	Role        Role   `json:"role"`
	Department  string `json:"department,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
}

// IsZero reports whether u identifies nobody.
func (u User) IsZero() bool {
	return u.ID == 0 && u.Email == ""
}

// Session pairs a bearer token with the user it was issued to.
//
// Session values are immutable once built; stores hand out copies.
type Session struct {
	Token string
	User  User
}

// ErrIncompleteSession is returned when a token or user is missing.
var ErrIncompleteSession = errors.New("incomplete session: token and user are required together")

// New builds a Session, enforcing the pairing invariant. The role is
// normalized, so the legacy "user" role is stored as employee.
func New(token string, user User) (*Session, error) {
	s := &Session{Token: strings.TrimSpace(token), User: user}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	role, err := ParseRole(string(user.Role))
	if err != nil {
		return nil, err
	}
	s.User.Role = role
	return s, nil
}

// Validate checks that both halves are present and the role is known.
func (s *Session) Validate() error {
	if s == nil || s.Token == "" || s.User.IsZero() {
		return ErrIncompleteSession
	}
	if _, err := ParseRole(string(s.User.Role)); err != nil {
		return err
	}
	return nil
}

// Clone returns a copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
