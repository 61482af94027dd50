package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeded(t *testing.T, envelope bool) *Server {
	t.Helper()
	s, err := New(Config{Secret: []byte("mock-secret"), Envelope: envelope})
	require.NoError(t, err)
	require.NoError(t, s.Seed())
	return s
}

func do(t *testing.T, s *Server, method, path, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/auth/login", "", "application/json",
		`{"email":"`+email+`","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestLoginJSONAndForm(t *testing.T) {
	s := newSeeded(t, false)
	login(t, s, "manager@smartwork.io")

	form := url.Values{"username": {"employee@smartwork.io"}, "password": {"password123"}}
	rec := do(t, s, http.MethodPost, "/api/v1/auth/login", "", "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"employee"`)
}

func TestLoginFailures(t *testing.T) {
	s := newSeeded(t, false)

	rec := do(t, s, http.MethodPost, "/api/v1/auth/login", "", "application/json",
		`{"email":"admin@smartwork.io","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Incorrect email or password"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/v1/auth/login", "", "application/json", `{"email":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loc":["body","email"]`)
	assert.Contains(t, rec.Body.String(), `"loc":["body","password"]`)
}

func TestBearerRequired(t *testing.T) {
	s := newSeeded(t, false)

	rec := do(t, s, http.MethodGet, "/api/v1/tasks", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/tasks", "not.a.token", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, rec.Body.String())
}

func TestRoleChecks(t *testing.T) {
	s := newSeeded(t, false)
	employee := login(t, s, "employee@smartwork.io")
	admin := login(t, s, "admin@smartwork.io")

	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, "/api/v1/users", employee, "", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, "/api/v1/dashboard/admin", employee, "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/dashboard/employee", employee, "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/users", admin, "", "").Code)
}

func TestEmployeeSeesOwnTasks(t *testing.T) {
	s := newSeeded(t, false)
	token := login(t, s, "employee@smartwork.io")

	rec := do(t, s, http.MethodGet, "/api/v1/tasks", token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Review onboarding docs", tasks[0].Title)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/tasks/1", token, "", "").Code)
}

func TestTaskStatusValidation(t *testing.T) {
	s := newSeeded(t, false)
	token := login(t, s, "manager@smartwork.io")

	rec := do(t, s, http.MethodPatch, "/api/v1/tasks/1/status", token, "application/json", `{"status":"done"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodPatch, "/api/v1/tasks/1/status", token, "application/json", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
}

func TestFailNextIsConsumedOnce(t *testing.T) {
	s := newSeeded(t, false)
	s.FailNext(http.MethodGet, "/", http.StatusTooManyRequests, "")

	rec := do(t, s, http.MethodGet, "/", "", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Too Many Requests"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/", "", "", "").Code)
	assert.EqualValues(t, 2, s.Requests())
}

func TestEnvelopeMode(t *testing.T) {
	s := newSeeded(t, true)

	rec := do(t, s, http.MethodGet, "/", "", "", "")
	assert.JSONEq(t, `{"success":true,"data":{"message":"SmartWork 360 API","status":"ok"},"error":null}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/v1/auth/me", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"data":null,"error":{"message":"Not authenticated","status_code":401}}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/v1/auth/register", "", "application/json", `{"email":"x@y.z","password":"abc"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"password"`)
}

func TestRegisterDuplicate(t *testing.T) {
	s := newSeeded(t, false)
	rec := do(t, s, http.MethodPost, "/api/v1/auth/register", "", "application/json",
		`{"email":"admin@smartwork.io","password":"longenough","name":"Dup"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Email already registered"}`, rec.Body.String())
}
