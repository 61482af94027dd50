package mockapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MrEthical07/swclient/session"
	"go.uber.org/zap"
)

// Task mirrors the backend's task row. Timestamps carry no zone.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	AssignedTo  *int64 `json:"assigned_to,omitempty"`
	CreatedBy   int64  `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TaskInput is the create and update payload.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	AssignedTo  *int64 `json:"assigned_to"`
}

// Notification mirrors the backend's notification row.
type Notification struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

const timestampLayout = "2006-01-02T15:04:05"

var taskStatuses = []string{"pending", "in-progress", "completed"}

func stamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

func (s *Server) routes() {
	const api = "/api/v1"
	managers := []session.Role{session.RoleAdmin, session.RoleManager}

	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	s.mux.HandleFunc("POST "+api+"/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST "+api+"/auth/register", s.handleRegister)
	s.mux.HandleFunc("GET "+api+"/auth/me", s.authed(s.handleMe))

	s.mux.HandleFunc("GET "+api+"/tasks", s.authed(s.handleListTasks))
	s.mux.HandleFunc("POST "+api+"/tasks", s.authed(s.handleCreateTask))
	s.mux.HandleFunc("GET "+api+"/tasks/{id}", s.authed(s.handleGetTask))
	s.mux.HandleFunc("PUT "+api+"/tasks/{id}", s.authed(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE "+api+"/tasks/{id}", s.authed(s.handleDeleteTask, managers...))
	s.mux.HandleFunc("PATCH "+api+"/tasks/{id}/status", s.authed(s.handleTaskStatus))

	s.mux.HandleFunc("GET "+api+"/dashboard/stats", s.authed(s.handleStats))
	s.mux.HandleFunc("GET "+api+"/dashboard/admin", s.authed(s.handleStats, session.RoleAdmin))
	s.mux.HandleFunc("GET "+api+"/dashboard/manager", s.authed(s.handleStats, managers...))
	s.mux.HandleFunc("GET "+api+"/dashboard/employee", s.authed(s.handleStats))

	s.mux.HandleFunc("GET "+api+"/notifications", s.authed(s.handleListNotifications))
	s.mux.HandleFunc("PATCH "+api+"/notifications/{id}/read", s.authed(s.handleMarkRead))
	s.mux.HandleFunc("DELETE "+api+"/notifications/{id}", s.authed(s.handleDeleteNotification))

	s.mux.HandleFunc("GET "+api+"/users", s.authed(s.handleListUsers, session.RoleAdmin))
	s.mux.HandleFunc("GET "+api+"/users/{id}", s.authed(s.handleGetUser, session.RoleAdmin))
	s.mux.HandleFunc("PUT "+api+"/users/{id}", s.authed(s.handleUpdateUser, session.RoleAdmin))
	s.mux.HandleFunc("DELETE "+api+"/users/{id}", s.authed(s.handleDeleteUser, session.RoleAdmin))

	s.mux.HandleFunc("POST "+api+"/chatbot", s.authed(s.handleChat))
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "SmartWork 360 API", "status": "ok"})
}

// handleLogin accepts JSON {email, password} or the OAuth2 password form.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var email, password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, "Malformed form body")
			return
		}
		email, password = r.PostForm.Get("username"), r.PostForm.Get("password")
	} else {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeBody(w, r, &in) {
			s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}
		email, password = in.Email, in.Password
	}

	var invalid []detail
	if email == "" {
		invalid = append(invalid, missing("email"))
	}
	if password == "" {
		invalid = append(invalid, missing("password"))
	}
	if len(invalid) > 0 {
		s.writeInvalid(w, invalid...)
		return
	}

	acct, ok := s.lookup(email)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	match, err := s.hasher.verify(password, acct.hash)
	if err != nil || !match {
		s.writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !acct.user.IsActive {
		s.writeError(w, http.StatusForbidden, "Inactive user")
		return
	}

	token, err := s.tokens.Issue(acct.user.ID, acct.user.Email, string(acct.user.Role))
	if err != nil {
		s.logger.Error("mock token issue failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         acct.user,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		Role       string `json:"role"`
		Department string `json:"department"`
	}
	if !decodeBody(w, r, &in) {
		s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	var invalid []detail
	if in.Email == "" {
		invalid = append(invalid, missing("email"))
	}
	if len(in.Password) < minPasswordBytes {
		invalid = append(invalid, detail{
			Loc:  []string{"body", "password"},
			Msg:  "String should have at least 6 characters",
			Type: "string_too_short",
		})
	}
	if in.Role == "" {
		in.Role = string(session.RoleEmployee)
	}
	if _, err := session.ParseRole(in.Role); err != nil {
		invalid = append(invalid, detail{Loc: []string{"body", "role"}, Msg: "Input should be 'admin', 'manager' or 'employee'", Type: "enum"})
	}
	if len(invalid) > 0 {
		s.writeInvalid(w, invalid...)
		return
	}

	u, err := s.AddUser(in.Email, in.Password, in.Name, session.Role(in.Role), in.Department)
	if errors.Is(err, errEmailTaken) {
		s.writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, principalFrom(r.Context()))
}

func canSeeTask(u session.User, t Task) bool {
	if u.Role != session.RoleEmployee {
		return true
	}
	return t.CreatedBy == u.ID || (t.AssignedTo != nil && *t.AssignedTo == u.ID)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u := principalFrom(r.Context())

	s.mu.Lock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if canSeeTask(u, t) {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b Task) int { return int(a.ID - b.ID) })
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(owner int64, in TaskInput) Task {
	if in.Status == "" {
		in.Status = "pending"
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	now := stamp()
	t := Task{
		ID:          s.nextTaskID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[t.ID] = t
	return t
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in TaskInput
	if !decodeBody(w, r, &in) {
		s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		s.writeInvalid(w, missing("title"))
		return
	}
	if in.Status != "" && !slices.Contains(taskStatuses, in.Status) {
		s.writeInvalid(w, detail{Loc: []string{"body", "status"}, Msg: "Invalid task status", Type: "enum"})
		return
	}
	s.writeJSON(w, http.StatusCreated, s.createTask(principalFrom(r.Context()).ID, in))
}

// task looks up the {id} task visible to the caller, writing 404 otherwise.
func (s *Server) task(w http.ResponseWriter, r *http.Request) (Task, bool) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Task not found")
		return Task{}, false
	}
	s.mu.Lock()
	t, found := s.tasks[id]
	s.mu.Unlock()
	if !found || !canSeeTask(principalFrom(r.Context()), t) {
		s.writeError(w, http.StatusNotFound, "Task not found")
		return Task{}, false
	}
	return t, true
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if t, ok := s.task(w, r); ok {
		s.writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.task(w, r)
	if !ok {
		return
	}
	var in TaskInput
	if !decodeBody(w, r, &in) {
		s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if in.Status != "" && !slices.Contains(taskStatuses, in.Status) {
		s.writeInvalid(w, detail{Loc: []string{"body", "status"}, Msg: "Invalid task status", Type: "enum"})
		return
	}

	if in.Title != "" {
		t.Title = in.Title
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if in.DueDate != "" {
		t.DueDate = in.DueDate
	}
	if in.AssignedTo != nil {
		t.AssignedTo = in.AssignedTo
	}
	t.UpdatedAt = stamp()

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := s.task(w, r)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &in) {
		s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if in.Status == "" {
		s.writeInvalid(w, missing("status"))
		return
	}
	if !slices.Contains(taskStatuses, in.Status) {
		s.writeInvalid(w, detail{Loc: []string{"body", "status"}, Msg: "Invalid task status", Type: "enum"})
		return
	}

	t.Status = in.Status
	t.UpdatedAt = stamp()
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.task(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.tasks, t.ID)
	s.mu.Unlock()
	s.writeNoContent(w)
}

// handleStats computes dashboard counters over the tasks the caller can see.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	u := principalFrom(r.Context())

	s.mu.Lock()
	byStatus := map[string]int{}
	total := 0
	for _, t := range s.tasks {
		if canSeeTask(u, t) {
			byStatus[t.Status]++
			total++
		}
	}
	unread := 0
	for _, n := range s.notifications {
		if n.UserID == u.ID && !n.Read {
			unread++
		}
	}
	users := len(s.accounts)
	s.mu.Unlock()

	completion := 0.0
	if total > 0 {
		completion = float64(byStatus["completed"]) / float64(total) * 100
	}
	stats := map[string]any{
		"total_tasks":          total,
		"pending_tasks":        byStatus["pending"],
		"in_progress_tasks":    byStatus["in-progress"],
		"completed_tasks":      byStatus["completed"],
		"completion_rate":      completion,
		"unread_notifications": unread,
		"role":                 u.Role,
	}
	if u.Role == session.RoleAdmin {
		stats["total_users"] = users
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) notify(userID int64, kind, title, message string) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNoteID++
	n := Notification{
		ID:        s.nextNoteID,
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: stamp(),
	}
	s.notifications[n.ID] = n
	return n
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	u := principalFrom(r.Context())
	s.mu.Lock()
	out := make([]Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == u.ID {
			out = append(out, n)
		}
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b Notification) int { return int(a.ID - b.ID) })
	s.writeJSON(w, http.StatusOK, out)
}

// notification looks up the caller's {id} notification, writing 404 otherwise.
func (s *Server) notification(w http.ResponseWriter, r *http.Request) (Notification, bool) {
	id, ok := pathID(r)
	s.mu.Lock()
	n, found := s.notifications[id]
	s.mu.Unlock()
	if !ok || !found || n.UserID != principalFrom(r.Context()).ID {
		s.writeError(w, http.StatusNotFound, "Notification not found")
		return Notification{}, false
	}
	return n, true
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, ok := s.notification(w, r)
	if !ok {
		return
	}
	n.Read = true
	s.mu.Lock()
	s.notifications[n.ID] = n
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := s.notification(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.notifications, n.ID)
	s.mu.Unlock()
	s.writeNoContent(w)
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]session.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.user)
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b session.User) int { return int(a.ID - b.ID) })
	s.writeJSON(w, http.StatusOK, out)
}

// accountFor looks up the {id} user, writing 404 otherwise.
func (s *Server) accountFor(w http.ResponseWriter, r *http.Request) (session.User, bool) {
	if id, ok := pathID(r); ok {
		if u, found := s.userByID(id); found {
			return u, true
		}
	}
	s.writeError(w, http.StatusNotFound, "User not found")
	return session.User{}, false
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if u, ok := s.accountFor(w, r); ok {
		s.writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.accountFor(w, r)
	if !ok {
		return
	}
	var in struct {
		FullName   *string `json:"full_name"`
		Role       *string `json:"role"`
		Department *string `json:"department"`
		IsActive   *bool   `json:"is_active"`
	}
	if !decodeBody(w, r, &in) {
		s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	if in.FullName != nil {
		u.DisplayName = *in.FullName
	}
	if in.Role != nil {
		role, err := session.ParseRole(*in.Role)
		if err != nil {
			s.writeInvalid(w, detail{Loc: []string{"body", "role"}, Msg: "Input should be 'admin', 'manager' or 'employee'", Type: "enum"})
			return
		}
		u.Role = role
	}
	if in.Department != nil {
		u.Department = *in.Department
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	s.mu.Lock()
	if a, found := s.accounts[u.Email]; found {
		a.user = u
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.accountFor(w, r)
	if !ok {
		return
	}
	if u.ID == principalFrom(r.Context()).ID {
		s.writeError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	s.mu.Lock()
	delete(s.accounts, u.Email)
	s.mu.Unlock()
	s.writeNoContent(w)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &in) {
		s.writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		s.writeInvalid(w, missing("message"))
		return
	}
	u := principalFrom(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]string{
		"response": "Hi " + firstName(u) + ", I received: " + in.Message,
	})
}

func firstName(u session.User) string {
	if name, _, _ := strings.Cut(u.DisplayName, " "); name != "" {
		return name
	}
	return u.Email
}
