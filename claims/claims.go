package claims

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrOpaque is returned for tokens that are not JWT-shaped at all. Such
	// tokens carry no claims and are left to the server to judge.
	ErrOpaque = errors.New("opaque token")
	// ErrMalformed is returned when a JWT-shaped token cannot be decoded.
	ErrMalformed = errors.New("malformed token")
)

// Claims is the payload carried by SmartWork access tokens.
//
// Subject holds the user id; Role mirrors the profile role so the backend can
// authorize without a lookup.
type Claims struct {
	UserID int64  `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Decode reads the claims of token without verifying its signature.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMalformed
	}
	if !strings.Contains(token, ".") {
		return nil, ErrOpaque
	}
	if strings.Count(token, ".") != 2 {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser()
	out := &Claims{}
	if _, _, err := parser.ParseUnverified(token, out); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return out, nil
}

// ExpiresAt returns the expiry of token and whether it carries one.
func ExpiresAt(token string) (time.Time, bool, error) {
	c, err := Decode(token)
	if err != nil {
		return time.Time{}, false, err
	}
	if c.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return c.ExpiresAt.Time, true, nil
}

// Expired reports whether token must be treated as expired at now.
//
// A token is expired when its exp is not after now+leeway, so a positive
// leeway retires tokens that much early. Undecodable tokens are always
// expired. Opaque tokens and tokens without an exp claim never expire locally.
func Expired(token string, now time.Time, leeway time.Duration) bool {
	exp, ok, err := ExpiresAt(token)
	if errors.Is(err, ErrOpaque) {
		return false
	}
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !exp.After(now.Add(leeway))
}
