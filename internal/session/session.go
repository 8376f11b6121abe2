// Package session owns the console's authentication lifecycle.
//
// A Store is constructed once per process from durable storage. Its state is
// read through Snapshot and observed through Subscribe; it changes only via
// Verify, Login, LoginAdmin, RefreshToken, Logout, Invalidate, and Reject. Every
// change to tokens or identity is written through to durable storage in the
// same operation.
//
// Session-mutating operations are serialised: at most one of them runs at a
// time. Reject is called by the transport and may run inside one of those
// operations; it joins the operation already holding the lock instead of
// waiting for it.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hirehub/console/internal/api"
	"github.com/hirehub/console/internal/auth"
	"github.com/hirehub/console/internal/storage"
)

// User-facing failure messages
const (
	MsgLoginFailed        = "Login failed"
	MsgConnectionError    = "Connection error. Please try again."
	MsgMissingCredentials = "Email and password are required"
	MsgPersistFailed      = "Failed to persist session"
)

// AuthAPI is the subset of the remote service the session needs
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	AdminLogin(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (*api.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
}

// State is a point-in-time copy of the session
type State struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	IsLoading       bool       `json:"isLoading"`
	IsAdmin         bool       `json:"isAdmin"`
	UserEmail       string     `json:"userEmail"`
	UserID          string     `json:"userId"`
	LastError       string     `json:"error"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

// Result is the outcome of a login attempt
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Store is the session store
type Store struct {
	api      AuthAPI
	storage  storage.Store
	logger   zerolog.Logger
	validate *validator.Validate

	// op serialises the mutating operations
	op sync.Mutex

	mu           sync.RWMutex
	state        State
	accessToken  string
	refreshToken string

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(State)
}

// New builds a store from whatever durable state exists. The result is
// optimistic (authenticated iff an access token is stored) and loading until
// Verify completes.
func New(authAPI AuthAPI, store storage.Store, logger zerolog.Logger) *Store {
	s := &Store{
		api:         authAPI,
		storage:     store,
		logger:      logger.With().Str("component", "session").Logger(),
		validate:    validator.New(),
		subscribers: make(map[int]func(State)),
	}

	ctx := context.Background()
	s.accessToken = s.read(ctx, storage.KeyAccessToken)
	s.refreshToken = s.read(ctx, storage.KeyRefreshToken)
	s.state = State{
		IsAuthenticated: s.accessToken != "",
		IsLoading:       true,
		IsAdmin:         s.read(ctx, storage.KeyIsAdmin) == "true",
		UserEmail:       s.read(ctx, storage.KeyUserEmail),
		UserID:          s.read(ctx, storage.KeyUserID),
		ExpiresAt:       auth.ExpiresAt(s.accessToken),
	}

	return s
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AccessToken returns the in-memory access token. It satisfies api.Credentials.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// Verify checks the stored access token with the service. It runs once per
// process start; any failure collapses to the logged-out state.
func (s *Store) Verify(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()
	ctx = s.locked(ctx)

	defer s.update(func(st *State) { st.IsLoading = false })

	token := s.AccessToken()
	if token == "" {
		s.update(func(st *State) { st.IsAuthenticated = false })
		return
	}

	resp, err := s.api.Verify(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Auth verification error")
		s.logoutLocked(ctx)
		return
	}

	if !resp.Success || resp.User == nil {
		s.logger.Info().Str("error", resp.Error).Msg("Stored session rejected")
		s.logoutLocked(ctx)
		return
	}

	isAdmin := resp.User.IsAdmin
	if err := s.storage.Put(ctx, map[string]string{storage.KeyIsAdmin: strconv.FormatBool(isAdmin)}); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist admin flag")
	}

	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.UserEmail = resp.User.Email
		st.IsAdmin = isAdmin
	})

	s.logger.Info().Str("email", resp.User.Email).Bool("is_admin", isAdmin).Msg("Session verified")
}

// Login authenticates a regular user
func (s *Store) Login(ctx context.Context, email, password string) Result {
	return s.login(ctx, email, password, s.api.Login)
}

// LoginAdmin authenticates through the admin endpoint. Admin capability is
// taken from the service's answer only.
func (s *Store) LoginAdmin(ctx context.Context, email, password string) Result {
	return s.login(ctx, email, password, s.api.AdminLogin)
}

type loginFunc func(ctx context.Context, email, password string) (*api.AuthResponse, error)

func (s *Store) login(ctx context.Context, email, password string, call loginFunc) Result {
	s.op.Lock()
	defer s.op.Unlock()
	ctx = s.locked(ctx)

	s.update(func(st *State) {
		st.IsLoading = true
		st.LastError = ""
	})
	defer s.update(func(st *State) { st.IsLoading = false })

	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return s.fail(MsgMissingCredentials)
	}

	resp, err := call(ctx, email, password)
	if err != nil {
		if msg := api.Message(err); msg != "" {
			// The service answered with a non-2xx status; that is a rejection
			return s.fail(msg)
		}
		s.logger.Error().Err(err).Msg("Login error")
		return s.fail(MsgConnectionError)
	}

	if !resp.Success || resp.Tokens == nil || resp.User == nil || resp.Tokens.AccessToken == "" {
		msg := resp.Error
		if msg == "" {
			msg = MsgLoginFailed
		}
		return s.fail(msg)
	}

	user := resp.User
	values := map[string]string{
		storage.KeyAccessToken:  resp.Tokens.AccessToken,
		storage.KeyRefreshToken: resp.Tokens.RefreshToken,
		storage.KeyUserEmail:    user.Email,
		storage.KeyUserID:       user.ID.String(),
		storage.KeyIsAdmin:      strconv.FormatBool(user.IsAdmin),
	}
	if err := s.storage.Put(ctx, values); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist session")
		// Never leave a half-written pair behind
		if err := s.storage.Delete(ctx, storage.SessionKeys...); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear partial session")
		}
		return s.fail(MsgPersistFailed)
	}

	s.mu.Lock()
	s.accessToken = resp.Tokens.AccessToken
	s.refreshToken = resp.Tokens.RefreshToken
	s.mu.Unlock()

	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.UserEmail = user.Email
		st.UserID = user.ID.String()
		st.IsAdmin = user.IsAdmin
		st.ExpiresAt = auth.ExpiresAt(resp.Tokens.AccessToken)
	})

	s.logger.Info().Str("email", user.Email).Bool("is_admin", user.IsAdmin).Msg("Logged in")
	return Result{Success: true}
}

func (s *Store) fail(msg string) Result {
	s.update(func(st *State) { st.LastError = msg })
	return Result{Success: false, Error: msg}
}

// Logout notifies the service (best effort) and clears the session. It never
// fails locally and is safe to call when already logged out.
func (s *Store) Logout(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()
	s.logoutLocked(s.locked(ctx))
}

func (s *Store) logoutLocked(ctx context.Context) {
	if s.AccessToken() != "" {
		if err := s.api.Logout(ctx); err != nil && !errors.Is(err, api.ErrUnauthorized) {
			s.logger.Warn().Err(err).Msg("Logout error")
		}
	}
	s.clear(ctx)
	s.logger.Info().Msg("Logged out")
}

// Invalidate clears the session exactly as Logout does, without contacting
// the service.
func (s *Store) Invalidate(reason string) {
	s.op.Lock()
	defer s.op.Unlock()

	s.clear(context.Background())
	s.logger.Warn().Str("reason", reason).Msg("Session invalidated")
}

// Reject is the transport's authorization-denied hook. It clears the session
// only if token is still the current access token; a rejection of a token
// that has since been replaced or cleared is dropped.
func (s *Store) Reject(ctx context.Context, token, reason string) {
	if !s.holdsOp(ctx) {
		s.op.Lock()
		defer s.op.Unlock()
	}

	if current := s.AccessToken(); current != token {
		s.logger.Debug().Str("reason", reason).Msg("Ignoring rejection of a superseded token")
		return
	}

	s.clear(context.WithoutCancel(ctx))
	s.logger.Warn().Str("reason", reason).Msg("Session invalidated")
}

type opKey struct{}

// locked tags ctx as running inside one of s's serialised operations
func (s *Store) locked(ctx context.Context) context.Context {
	return context.WithValue(ctx, opKey{}, s)
}

func (s *Store) holdsOp(ctx context.Context) bool {
	owner, _ := ctx.Value(opKey{}).(*Store)
	return owner == s
}

// RefreshToken exchanges the stored refresh token for a new pair. Any failure
// logs the session out. It satisfies api.Refresher.
func (s *Store) RefreshToken(ctx context.Context) bool {
	s.op.Lock()
	defer s.op.Unlock()
	ctx = s.locked(ctx)

	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		s.logoutLocked(ctx)
		return false
	}

	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token refresh error")
		s.logoutLocked(ctx)
		return false
	}

	if !resp.Success || resp.Tokens == nil || resp.Tokens.AccessToken == "" {
		s.logger.Info().Str("error", resp.Error).Msg("Token refresh rejected")
		s.logoutLocked(ctx)
		return false
	}

	if err := s.storage.Put(ctx, map[string]string{
		storage.KeyAccessToken:  resp.Tokens.AccessToken,
		storage.KeyRefreshToken: resp.Tokens.RefreshToken,
	}); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist refreshed tokens")
		s.logoutLocked(ctx)
		return false
	}

	s.mu.Lock()
	s.accessToken = resp.Tokens.AccessToken
	s.refreshToken = resp.Tokens.RefreshToken
	s.mu.Unlock()

	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.ExpiresAt = auth.ExpiresAt(resp.Tokens.AccessToken)
	})

	s.logger.Debug().Msg("Access token refreshed")
	return true
}

// clear resets memory and durable storage to the logged-out defaults
func (s *Store) clear(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.SessionKeys...); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear stored session")
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()

	s.update(func(st *State) {
		st.IsAuthenticated = false
		st.IsAdmin = false
		st.UserEmail = ""
		st.UserID = ""
		st.ExpiresAt = nil
	})
}

// update applies fn to the state and notifies subscribers
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	s.subMu.Lock()
	subscribers := make([]func(State), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subscribers = append(subscribers, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subscribers {
		sub(snapshot)
	}
}

func (s *Store) read(ctx context.Context, key string) string {
	value, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to read stored session")
		return ""
	}
	if !ok {
		return ""
	}
	return value
}
