package swclient

import (
	"context"
	"net/http"
	"strconv"
)

// UsersService administers user accounts. The backend restricts it to
// admins; other roles get KindForbidden.
type UsersService struct {
	client *Client
}

func userPath(id int64) string {
	return apiPrefix + "/users/" + strconv.FormatInt(id, 10)
}

// List returns every account. Admins only.
func (s *UsersService) List(ctx context.Context) ([]User, error) {
	return getJSON[[]User](ctx, s.client, apiPrefix+"/users")
}

// Get fetches one account.
func (s *UsersService) Get(ctx context.Context, id int64) (*User, error) {
	u, err := getJSON[User](ctx, s.client, userPath(id))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes the given profile fields of user id.
func (s *UsersService) Update(ctx context.Context, id int64, fields any) (*User, error) {
	u, err := sendJSON[User](ctx, s.client, http.MethodPut, userPath(id), fields)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes an account.
func (s *UsersService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Delete(ctx, userPath(id))
	return err
}
