// Package platformtest provides an in-memory portal API for tests.
package platformtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/platform"
)

// PendingMessage is returned by registrations that need approval.
const PendingMessage = "Registration successful. Your account is pending approval."

type account struct {
	password string
	user     domain.User
}

// Server is a fake portal API backed by httptest.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account
	sessions      map[string]string
	notifications map[string][]domain.Notification
	orgs          []domain.Organization
	jobs          []domain.Job
	pending       []domain.PendingUser
	approval      map[domain.Role]bool
	calls         []string
	seq           int
	unreadFail    bool
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:      make(map[string]*account),
		sessions:      make(map[string]string),
		notifications: make(map[string][]domain.Notification),
		approval:      map[domain.Role]bool{domain.RoleRecruiter: true, domain.RoleTPO: true},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("GET /auth/me", s.authed(s.me))
	mux.HandleFunc("POST /auth/logout", s.authed(s.logout))
	mux.HandleFunc("GET /organizations", s.organizations)
	mux.HandleFunc("GET /notifications", s.authed(s.listNotifications))
	mux.HandleFunc("GET /notifications/unread-count", s.authed(s.unreadCount))
	mux.HandleFunc("PATCH /notifications/mark-all-read", s.authed(s.markAllRead))
	mux.HandleFunc("PATCH /notifications/{id}/read", s.authed(s.markRead))
	mux.HandleFunc("GET /jobs", s.authed(s.listJobs))
	mux.HandleFunc("POST /applications", s.authed(s.apply))
	mux.HandleFunc("GET /users/pending", s.authed(s.listPending))
	mux.HandleFunc("PATCH /users/{id}/approve", s.authed(s.approve))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

// AddUser registers an approved account.
func (s *Server) AddUser(u domain.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.IsApproved = true
	s.accounts[strings.ToLower(u.Email)] = &account{password: password, user: u}
}

// AddNotifications appends notifications for the user with the given id.
func (s *Server) AddNotifications(userID string, ns ...domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[userID] = append(s.notifications[userID], ns...)
}

// AddOrganizations, AddJobs and AddPending seed the listings.
func (s *Server) AddOrganizations(orgs ...domain.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = append(s.orgs, orgs...)
}

func (s *Server) AddJobs(jobs ...domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, jobs...)
}

func (s *Server) AddPending(users ...domain.PendingUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, users...)
}

// FailUnreadCount makes the unread-count endpoint return 500.
func (s *Server) FailUnreadCount(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreadFail = fail
}

// Issue creates a session for email without going through login.
func (s *Server) Issue(email string) domain.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(strings.ToLower(email))
}

// Calls returns "METHOD /path" for every request received.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CountCalls counts requests whose "METHOD /path" equals call.
func (s *Server) CountCalls(call string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Unread returns the server-side unread count for a user.
func (s *Server) Unread(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked(userID)
}

func (s *Server) issueLocked(email string) domain.Tokens {
	s.seq++
	access := fmt.Sprintf("access-%d", s.seq)
	s.sessions[access] = email
	return domain.Tokens{AccessToken: access, RefreshToken: fmt.Sprintf("refresh-%d", s.seq)}
}

func (s *Server) unreadLocked(userID string) int {
	n := 0
	for _, note := range s.notifications[userID] {
		if !note.IsRead {
			n++
		}
	}
	return n
}

type authedHandler func(w http.ResponseWriter, r *http.Request, acct *account)

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, ok := s.sessions[token]
		acct := s.accounts[email]
		s.mu.Unlock()
		if !ok || acct == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			return
		}
		h(w, r, acct)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req platform.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acct.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	if !acct.user.IsApproved {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Account pending approval"})
		return
	}
	tokens := s.issueLocked(strings.ToLower(req.Email))
	user := acct.user
	writeJSON(w, http.StatusOK, platform.AuthResponse{User: &user, Tokens: &tokens})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req platform.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(req.Email)
	if _, exists := s.accounts[email]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{
			"message": "Validation failed",
			"details": []map[string]string{{"field": "email", "message": "already registered"}},
		})
		return
	}

	s.seq++
	user := domain.User{
		ID:             fmt.Sprintf("u-%d", s.seq),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		Profile:        req.Profile,
		IsApproved:     !s.approval[req.Role],
	}
	s.accounts[email] = &account{password: req.Password, user: user}

	if !user.IsApproved {
		s.pending = append(s.pending, domain.PendingUser{
			ID: user.ID, FirstName: user.FirstName, LastName: user.LastName,
			Email: user.Email, Role: user.Role, OrganizationID: user.OrganizationID,
			CreatedAt: time.Now(),
		})
		writeJSON(w, http.StatusCreated, platform.AuthResponse{Message: PendingMessage})
		return
	}
	tokens := s.issueLocked(email)
	writeJSON(w, http.StatusCreated, platform.AuthResponse{User: &user, Tokens: &tokens})
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, acct *account) {
	writeJSON(w, http.StatusOK, map[string]any{"user": acct.user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ *account) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) organizations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"organizations": s.orgs})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request, acct *account) {
	page := intParam(r, "page", 1)
	limit := intParam(r, "limit", 20)

	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.notifications[acct.user.ID]
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	items := append([]domain.Notification{}, all[start:end]...)
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (s *Server) unreadCount(w http.ResponseWriter, _ *http.Request, acct *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unreadFail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "unread counter unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": s.unreadLocked(acct.user.ID)})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request, acct *account) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, note := range s.notifications[acct.user.ID] {
		if note.ID == id {
			s.notifications[acct.user.ID][i].IsRead = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
}

func (s *Server) markAllRead(w http.ResponseWriter, _ *http.Request, acct *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications[acct.user.ID] {
		s.notifications[acct.user.ID][i].IsRead = true
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request, _ *account) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	jobType := r.URL.Query().Get("type")
	page := intParam(r, "page", 1)
	limit := intParam(r, "limit", 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.Job
	for _, j := range s.jobs {
		if search != "" && !strings.Contains(strings.ToLower(j.Title+" "+j.Company), search) {
			continue
		}
		if jobType != "" && string(j.Type) != jobType {
			continue
		}
		matched = append(matched, j)
	}
	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, platform.ListJobsResponse{Jobs: matched[start:end], Total: total, Page: page})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, acct *account) {
	if acct.user.Role != domain.RoleStudent {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Only students can apply"})
		return
	}
	var body struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.JobID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "jobId is required"})
		return
	}

	s.mu.Lock()
	s.seq++
	app := domain.Application{ID: fmt.Sprintf("a-%d", s.seq), JobID: body.JobID, Status: "applied", AppliedAt: time.Now()}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"application": app})
}

func (s *Server) listPending(w http.ResponseWriter, _ *http.Request, acct *account) {
	if acct.user.Role != domain.RoleTPO && acct.user.Role != domain.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"users": s.pending})
}

func (s *Server) approve(w http.ResponseWriter, r *http.Request, acct *account) {
	if acct.user.Role != domain.RoleTPO && acct.user.Role != domain.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden"})
		return
	}
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pending {
		if p.ID != id {
			continue
		}
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		for _, a := range s.accounts {
			if a.user.ID == id {
				a.user.IsApproved = true
			}
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
}

func intParam(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
