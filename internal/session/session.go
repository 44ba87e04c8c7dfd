// Package session tracks who is signed in along with their print budget and queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"webprint-client/internal/failure"
	"webprint-client/internal/gateway"
)

// Gateway is the part of the print API the session needs.
type Gateway interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*gateway.StatusResponse, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// Options configures a session.
type Options struct {
	DefaultDomain   string
	AllowedDomains  []string
	RefreshInterval time.Duration
	// OnSignedOut is called after every sign-out, forced or requested, so the
	// view can navigate away from the authenticated page.
	OnSignedOut func()
	// OnChange receives a snapshot after every state change.
	OnChange func(Snapshot)
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Authenticated bool         `json:"authenticated"`
	Email         string       `json:"email"`
	Budget        *float64     `json:"budget"`
	Queue         []QueueEntry `json:"queue"`
	ServiceDown   bool         `json:"serviceDown"`
	LoadingFailed bool         `json:"loadingFailed"`
}

// IsLoaded reports whether a budget has been loaded.
func (s Snapshot) IsLoaded() bool {
	return s.Budget != nil
}

// FormattedPrintBudget formats the budget, "$0.00" when not loaded.
func (s Snapshot) FormattedPrintBudget() string {
	if s.Budget == nil {
		return FormatMoney(0)
	}
	return FormatMoney(*s.Budget)
}

// PagesEstimate is the number of black and white pages the budget covers.
func (s Snapshot) PagesEstimate() int {
	if s.Budget == nil {
		return 0
	}
	return pageEstimate(*s.Budget, blackPagePrice)
}

// ColorPagesEstimate is the number of color pages the budget covers.
func (s Snapshot) ColorPagesEstimate() int {
	if s.Budget == nil {
		return 0
	}
	return pageEstimate(*s.Budget, colorPagePrice)
}

// State holds the authentication flag, identity, budget and queue.
//
// Budget and queue are only ever replaced together. The budget is nil exactly
// when no load has succeeded since the last sign-in, or nobody is signed in.
type State struct {
	gw   Gateway
	opts Options

	mu            sync.Mutex
	epoch         uint64 // bumped on every sign-in and sign-out
	authenticated bool
	email         string
	budget        *float64
	queue         []QueueEntry
	serviceDown   bool
	loadingFailed bool
}

// New creates a signed-out session.
func New(gw Gateway, opts Options) *State {
	return &State{gw: gw, opts: opts}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Authenticated: s.authenticated,
		Email:         s.email,
		Queue:         slices.Clone(s.queue),
		ServiceDown:   s.serviceDown,
		LoadingFailed: s.loadingFailed,
	}
	if s.budget != nil {
		b := *s.budget
		snap.Budget = &b
	}
	return snap
}

// Authenticated reports whether someone is signed in.
func (s *State) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Email returns the signed-in address, or "".
func (s *State) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Refresh loads the budget and queue in one request. A 504 marks the service
// as down, a 401 signs the user out, anything else leaves the last good data
// in place. Results that arrive after a sign-in or sign-out are dropped.
func (s *State) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch
	s.mu.Unlock()

	resp, err := s.gw.Status(ctx)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		err = gateway.Classify(err, failure.ErrSessionExpired, 401)
		s.loadingFailed = true
		s.serviceDown = errors.Is(err, failure.ErrBackendUnavailable)
		s.mu.Unlock()
		s.notify()

		if errors.Is(err, failure.ErrSessionExpired) {
			slog.Info("session cookie rejected, signing out")
			if signOutErr := s.SignOut(ctx); signOutErr != nil {
				slog.Warn("forced sign-out failed", "error", signOutErr)
			}
		} else {
			slog.Warn("failed to load budget and queue", "error", err, "service_down", s.Snapshot().ServiceDown)
		}
		return fmt.Errorf("refresh: %w", err)
	}

	queue := make([]QueueEntry, 0, len(resp.Queue))
	for _, item := range resp.Queue {
		queue = append(queue, newQueueEntry(item))
	}
	budget := resp.Budget
	s.queue = queue
	s.budget = &budget
	s.serviceDown = false
	s.loadingFailed = false
	s.mu.Unlock()
	s.notify()

	slog.Debug("budget and queue refreshed", "budget", budget, "queue_len", len(queue))
	return nil
}

// SignIn normalizes identifier into an institutional address, signs in and
// loads the budget. The secret is zeroed before SignIn returns, whatever the
// outcome. A rejected sign-in leaves the session signed out; a user who was
// signed in before is signed out the same way SignOut does it.
func (s *State) SignIn(ctx context.Context, identifier string, secret []byte) error {
	defer clear(secret)

	email, err := NormalizeEmail(identifier, s.opts.DefaultDomain, s.opts.AllowedDomains)
	if err != nil {
		s.abandon(ctx)
		return err
	}

	if err := s.gw.Login(ctx, email, string(secret)); err != nil {
		s.abandon(ctx)
		err = gateway.Classify(err, failure.ErrAuth, 400, 401)
		slog.Info("sign-in rejected", "email", email, "error", err)
		return fmt.Errorf("sign in: %w", err)
	}

	s.mu.Lock()
	s.epoch++
	s.authenticated = true
	s.email = email
	s.budget = nil
	s.queue = nil
	s.serviceDown = false
	s.loadingFailed = false
	s.mu.Unlock()
	s.notify()

	slog.Info("signed in", "email", email)
	if err := s.Refresh(ctx); err != nil {
		slog.Warn("initial refresh after sign-in failed", "error", err)
	}
	return nil
}

// SignOut ends the server session and clears all state. Calling it while
// signed out does nothing.
func (s *State) SignOut(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.mu.Unlock()
	if !wasAuthenticated {
		return nil
	}

	s.reset()
	s.notify()
	err := s.gw.Logout(ctx)
	if s.opts.OnSignedOut != nil {
		s.opts.OnSignedOut()
	}
	if err != nil {
		return fmt.Errorf("sign out: %w", gateway.Classify(err, failure.ErrTransient))
	}
	return nil
}

// DeleteJob removes a job from the print queue and reloads the queue.
func (s *State) DeleteJob(ctx context.Context, jobID string) error {
	if !s.Authenticated() {
		return fmt.Errorf("delete job: %w", failure.ErrSessionExpired)
	}
	if err := s.gw.DeleteJob(ctx, jobID); err != nil {
		err = gateway.Classify(err, failure.ErrSessionExpired, 401)
		if errors.Is(err, failure.ErrSessionExpired) {
			if signOutErr := s.SignOut(ctx); signOutErr != nil {
				slog.Warn("forced sign-out failed", "error", signOutErr)
			}
		}
		return fmt.Errorf("delete job %s: %w", jobID, err)
	}
	return s.Refresh(ctx)
}

// Run refreshes the budget and queue periodically while signed in.
func (s *State) Run(ctx context.Context) {
	interval := s.opts.RefreshInterval
	if interval <= 0 {
		slog.Info("periodic refresh disabled")
		return
	}
	slog.Info("starting periodic refresh", "interval", interval)

	s.refreshIfSignedIn(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("periodic refresh shutting down")
			return
		case <-timer.C:
			s.refreshIfSignedIn(ctx)
			timer.Reset(interval)
		}
	}
}

func (s *State) refreshIfSignedIn(ctx context.Context) {
	if !s.Authenticated() {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		slog.Debug("periodic refresh failed", "error", err)
	}
}

func (s *State) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.Snapshot())
	}
}

// abandon drops whatever session existed before a rejected sign-in.
func (s *State) abandon(ctx context.Context) {
	if !s.Authenticated() {
		s.reset()
		return
	}
	if err := s.SignOut(ctx); err != nil {
		slog.Warn("sign-out after rejected sign-in failed", "error", err)
	}
}

func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.authenticated = false
	s.email = ""
	s.budget = nil
	s.queue = nil
	s.serviceDown = false
	s.loadingFailed = false
}

// NormalizeEmail turns a bare username into an address on defaultDomain and
// checks the domain against allowed. Nothing is sent over the network.
func NormalizeEmail(identifier, defaultDomain string, allowed []string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(identifier))
	if email == "" {
		return "", failure.ErrMissingIdentifier
	}
	if !strings.Contains(email, "@") {
		email = email + "@" + defaultDomain
	}

	at := strings.LastIndex(email, "@")
	if at == 0 {
		return "", failure.ErrMissingIdentifier
	}
	domain := email[at+1:]
	for _, d := range allowed {
		if domain == strings.ToLower(d) {
			return email, nil
		}
	}
	return "", fmt.Errorf("%w: %q", failure.ErrInvalidEmailDomain, domain)
}
