package mockapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/swclient/claims"
	"github.com/MrEthical07/swclient/session"
	"go.uber.org/zap"
)

// Config configures a [Server].
type Config struct {
	// Secret signs HS256 access tokens. Required.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Defaults to one hour.
	TokenTTL time.Duration
	// Envelope wraps every reply in {success, data, error}.
	Envelope bool
	Logger   *zap.Logger
}

type failure struct {
	status int
	body   string
}

type account struct {
	user session.User
	hash string
}

// Server is an in-memory SmartWork backend.
//
// All methods are safe for concurrent use.
type Server struct {
	config   Config
	tokens   *claims.Manager
	hasher   *hasher
	logger   *zap.Logger
	mux      *http.ServeMux
	requests atomic.Int64

	mu            sync.Mutex
	accounts      map[string]*account
	tasks         map[int64]Task
	notifications map[int64]Notification
	nextUserID    int64
	nextTaskID    int64
	nextNoteID    int64
	failures      map[string][]failure
}

// New validates cfg and returns a Server with no data.
func New(cfg Config) (*Server, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("mockapi: secret is required")
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	tokens, err := claims.NewManager(claims.Config{
		TTL:           cfg.TokenTTL,
		SigningMethod: claims.MethodHS256,
		PrivateKey:    cfg.Secret,
		Issuer:        "smartwork-mock",
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:        cfg,
		tokens:        tokens,
		hasher:        &hasher{config: defaultHasherConfig()},
		logger:        cfg.Logger,
		mux:           http.NewServeMux(),
		accounts:      make(map[string]*account),
		tasks:         make(map[int64]Task),
		notifications: make(map[int64]Notification),
		failures:      make(map[string][]failure),
	}
	s.routes()
	return s, nil
}

// Start serves s on a loopback listener until the returned server is closed.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	s.logger.Debug("mock request", zap.String("method", r.Method), zap.String("path", r.URL.Path))

	if f, ok := s.popFailure(r.Method, r.URL.Path); ok {
		w.Header().Set("Content-Type", "application/json")
		if f.status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "1")
		}
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return
	}
	s.mux.ServeHTTP(w, r)
}

// Requests returns how many requests reached the server.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// FailNext makes the next request matching method and path reply with status
// and body. Queued failures are consumed in order. An empty body becomes
// {"detail": "<status text>"}.
func (s *Server) FailNext(method, path string, status int, body string) {
	if body == "" {
		body = `{"detail":"` + http.StatusText(status) + `"}`
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := failureKey(method, path)
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

func (s *Server) popFailure(method, path string) (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := failureKey(method, path)
	queue := s.failures[key]
	if len(queue) == 0 {
		return failure{}, false
	}
	f := queue[0]
	if len(queue) == 1 {
		delete(s.failures, key)
	} else {
		s.failures[key] = queue[1:]
	}
	return f, true
}

func failureKey(method, path string) string {
	return strings.ToUpper(method) + " " + strings.TrimSuffix(path, "/")
}

// AddUser registers an account and returns its profile.
func (s *Server) AddUser(email, password, fullName string, role session.Role, department string) (session.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return session.User{}, errors.New("mockapi: email is required")
	}
	role, err := session.ParseRole(string(role))
	if err != nil {
		return session.User{}, err
	}
	hash, err := s.hasher.hash(password)
	if err != nil {
		return session.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return session.User{}, errEmailTaken
	}
	s.nextUserID++
	u := session.User{
		ID:          s.nextUserID,
		Email:       email,
		DisplayName: fullName,
		Role:        role,
		Department:  department,
		IsActive:    true,
	}
	s.accounts[email] = &account{user: u, hash: hash}
	return u, nil
}

// Seed loads one user per role plus a few tasks and notifications. All seeded
// passwords are "password123".
func (s *Server) Seed() error {
	admin, err := s.AddUser("admin@smartwork.io", "password123", "Ada Admin", session.RoleAdmin, "Operations")
	if err != nil {
		return err
	}
	manager, err := s.AddUser("manager@smartwork.io", "password123", "Max Manager", session.RoleManager, "Engineering")
	if err != nil {
		return err
	}
	employee, err := s.AddUser("employee@smartwork.io", "password123", "Eve Employee", session.RoleEmployee, "Engineering")
	if err != nil {
		return err
	}

	s.createTask(manager.ID, TaskInput{Title: "Quarterly planning", Priority: "high", AssignedTo: &manager.ID})
	s.createTask(manager.ID, TaskInput{Title: "Review onboarding docs", Priority: "medium", AssignedTo: &employee.ID})
	s.createTask(admin.ID, TaskInput{Title: "Rotate API keys", Priority: "low", AssignedTo: &admin.ID})

	s.notify(employee.ID, "task", "New task assigned", "Review onboarding docs")
	s.notify(manager.ID, "system", "Welcome", "Your team dashboard is ready")
	return nil
}

func (s *Server) lookup(email string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return account{}, false
	}
	return *a, true
}

func (s *Server) userByID(id int64) (session.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return session.User{}, false
}

var errEmailTaken = errors.New("email already registered")
