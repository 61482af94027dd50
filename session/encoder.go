package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptUser is returned when a stored profile cannot be decoded.
var ErrCorruptUser = errors.New("corrupt user profile")

// EncodeUser serializes u as stored under the user key.
func EncodeUser(u User) ([]byte, error) {
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return nil, err
	}
	u.Role = role
	return json.Marshal(u)
}

// DecodeUser parses a stored or server-sent profile. Both the current
// full_name field and the legacy name field are accepted.
func DecodeUser(data []byte) (User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	u.Role = role
	if u.IsZero() {
		return User{}, fmt.Errorf("%w: empty profile", ErrCorruptUser)
	}
	return u, nil
}

// UnmarshalJSON lets server payloads decode straight into a User.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var wire struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*u = User(wire.plain)
	if u.DisplayName == "" {
		u.DisplayName = wire.Name
	}
	if u.Role != "" {
		if role, err := ParseRole(string(u.Role)); err == nil {
			u.Role = role
		}
	}
	return nil
}
