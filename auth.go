package swclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// LoginResult is the backend's reply to a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        User   `json:"user"`
}

// RegisterRequest is the payload of a self-service sign-up.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// AuthService covers login, registration and the current profile.
type AuthService struct {
	client *Client
}

// Login posts credentials as JSON and, on success, stores the returned token
// and user as the Session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	return s.login(ctx, body)
}

// LoginForm is Login for backends that expect the OAuth2 password form
// (username/password, form-encoded).
func (s *AuthService) LoginForm(ctx context.Context, email, password string) (*LoginResult, error) {
	body := url.Values{"username": {email}, "password": {password}}
	return s.login(ctx, body)
}

func (s *AuthService) login(ctx context.Context, body any) (*LoginResult, error) {
	c := s.client
	res, err := sendJSON[LoginResult](ctx, c, http.MethodPost, apiPrefix+"/auth/login", body)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			c.emitAudit(ctx, auditEventLoginFailure, false, nil, e, nil)
		}
		return nil, err
	}
	if res.AccessToken == "" || res.User.IsZero() {
		e := &Error{
			Kind:    KindServerFault,
			Status:  http.StatusOK,
			Method:  http.MethodPost,
			Path:    apiPrefix + "/auth/login",
			Message: "login response lacks token or user",
		}
		c.metricInc(MetricServerFault)
		return nil, e
	}
	if err := c.SetSession(ctx, res.AccessToken, res.User); err != nil {
		return nil, err
	}

	c.metricInc(MetricLogin)
	c.emitAudit(ctx, auditEventLoginSuccess, true, &res.User, nil, nil)
	c.logger.Info("login succeeded", zap.Int64("user_id", res.User.ID), zap.String("role", string(res.User.Role)))
	return &res, nil
}

// Register creates an account. It does not sign the new user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	u, err := sendJSON[User](ctx, s.client, http.MethodPost, apiPrefix+"/auth/register", req)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Me fetches the profile of the Session's user from the backend.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	u, err := getJSON[User](ctx, s.client, apiPrefix+"/auth/me")
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout clears the Session and signals a redirect with ReasonLogout. It
// makes no backend call.
func (s *AuthService) Logout(ctx context.Context) error {
	c := s.client
	sess, _ := c.Session(ctx)
	c.metricInc(MetricLogout)
	return c.invalidate(ctx, ReasonLogout, sessionUser(sess, sess != nil), nil)
}

// Ping wakes the backend with GET / and reports whether it answered 2xx.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "/")
	return err
}
