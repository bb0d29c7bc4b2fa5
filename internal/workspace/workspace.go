// Package workspace keeps the in-memory, per-session state that only lives
// between page loads: auth stores, the voting machine, pending OTP steps,
// flash messages and the access screen selection. Nothing here is persisted.
package workspace

import (
	"context"
	"strings"
	"sync"
	"time"

	"votedesk/internal/domain"
	"votedesk/internal/poller"
	"votedesk/internal/service/admin"
	"votedesk/internal/service/auth"
	"votedesk/internal/service/voting"
	"votedesk/pkg/logger"
)

// Flash is a one-shot message shown on the next page
type Flash struct {
	Kind    string
	Message string
}

// Workspace is the state of one browser session
type Workspace struct {
	ID     string
	User   *auth.Store
	Admin  *auth.Store
	Vote   *voting.Machine
	Access *admin.Selection

	mu                  sync.Mutex
	flash               *Flash
	pendingEmail        string
	pendingRegistration *domain.Registration
	pendingAdminEmail   string
	resetEmail          string
	lastSeen            time.Time
}

// SetFlash replaces the pending flash message
func (w *Workspace) SetFlash(kind, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flash = &Flash{Kind: kind, Message: message}
}

// TakeFlash returns and clears the pending flash message
func (w *Workspace) TakeFlash() *Flash {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.flash
	w.flash = nil
	return f
}

// PendingLogin is the address awaiting a login OTP
func (w *Workspace) PendingLogin() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingEmail
}

func (w *Workspace) SetPendingLogin(email string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingEmail = email
}

// PendingRegistration is the form awaiting a registration OTP
func (w *Workspace) PendingRegistration() *domain.Registration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pendingRegistration == nil {
		return nil
	}
	r := *w.pendingRegistration
	return &r
}

func (w *Workspace) SetPendingRegistration(r *domain.Registration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingRegistration = r
}

func (w *Workspace) PendingAdminLogin() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingAdminEmail
}

func (w *Workspace) SetPendingAdminLogin(email string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingAdminEmail = email
}

// ResetEmail is the address a password reset OTP was sent to
func (w *Workspace) ResetEmail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resetEmail
}

func (w *Workspace) SetResetEmail(email string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetEmail = email
}

// ClearUser drops everything tied to the user channel
func (w *Workspace) ClearUser() {
	w.mu.Lock()
	w.pendingEmail = ""
	w.pendingRegistration = nil
	w.mu.Unlock()
	w.Vote.Reset()
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Registry owns every live workspace
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Workspace
	ttl     time.Duration
	now     func() time.Time
	machine func() *voting.Machine
	evicted []func(sid string)
	logger  *logger.Logger
}

// NewRegistry creates a registry whose workspaces expire after ttl idle.
// machine builds the voting machine of a new workspace.
func NewRegistry(ttl time.Duration, machine func() *voting.Machine, log *logger.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*Workspace),
		ttl:     ttl,
		now:     time.Now,
		machine: machine,
		logger:  log.Named("workspace"),
	}
}

// OnEvict registers fn to run for every swept session id
func (r *Registry) OnEvict(fn func(sid string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = append(r.evicted, fn)
}

// Get returns the workspace of sid, creating it on first use
func (r *Registry) Get(sid string) *Workspace {
	now := r.now()
	r.mu.Lock()
	ws, ok := r.entries[sid]
	if !ok {
		ws = r.create(sid)
		r.entries[sid] = ws
	}
	r.mu.Unlock()

	ws.touch(now)
	return ws
}

func (r *Registry) create(sid string) *Workspace {
	ws := &Workspace{
		ID:     sid,
		User:   auth.NewStore(),
		Admin:  auth.NewStore(),
		Vote:   r.machine(),
		Access: admin.NewSelection(),
	}
	log := r.logger.WithSession(sid)
	ws.User.Subscribe(func(s auth.State, a auth.Action) {
		log.WithFields(map[string]interface{}{
			"channel":       "user",
			"action":        string(a.Type),
			"authenticated": s.IsAuthenticated,
		}).Debug("Auth state changed")
	})
	ws.Admin.Subscribe(func(s auth.State, a auth.Action) {
		log.WithFields(map[string]interface{}{
			"channel":       "admin",
			"action":        string(a.Type),
			"authenticated": s.IsAuthenticated,
		}).Debug("Auth state changed")
	})
	return ws
}

// Len is the number of live workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops workspaces idle for longer than the ttl
func (r *Registry) Sweep(_ context.Context) int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var gone []string
	for sid, ws := range r.entries {
		if ws.idleSince().Before(cutoff) {
			delete(r.entries, sid)
			gone = append(gone, sid)
		}
	}
	hooks := append([]func(string){}, r.evicted...)
	r.mu.Unlock()

	for _, sid := range gone {
		for _, fn := range hooks {
			fn(sid)
		}
	}
	if len(gone) > 0 {
		r.logger.WithField("count", len(gone)).Debug("Swept idle workspaces")
	}
	return len(gone)
}

// Sweeper returns a task that sweeps every interval
func (r *Registry) Sweeper(interval time.Duration) *poller.Task {
	return poller.New("workspace-sweep", interval, func(ctx context.Context) error {
		r.Sweep(ctx)
		return nil
	}, r.logger)
}

// Key builds a per-session key such as a debounce key
func Key(sid string, parts ...string) string {
	return strings.Join(append([]string{sid}, parts...), ":")
}
