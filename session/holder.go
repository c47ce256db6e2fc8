// Package session owns process-wide authentication state: the token pair,
// the cached user snapshot and the site-admin flag, persisted through an
// injected key-value store and kept in sync across processes through a
// broadcast channel.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/mathstutor/mathstutor-go/api"
	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/user"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	}
	return "anonymous"
}

const loginFallbackMessage = "Login failed. Please try again."

type Holder struct {
	api *api.Client
	kv  core.KeyValue
	bc  core.Broadcaster
	log core.Logger

	mu          sync.RWMutex
	state       State
	usr         user.User
	isSiteAdmin bool
}

func NewHolder(apiClient *api.Client, kv core.KeyValue, bc core.Broadcaster, log core.Logger) *Holder {
	return &Holder{api: apiClient, kv: kv, bc: bc, log: log}
}

func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

func (h *Holder) IsAuthenticated() bool { return h.State() == StateAuthenticated }

func (h *Holder) IsSiteAdmin() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isSiteAdmin
}

// User returns the cached user snapshot, if authenticated.
func (h *Holder) User() (user.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.usr, h.state == StateAuthenticated
}

// Init resolves the initial state from persisted storage: a stored token and
// user snapshot optimistically authenticate, then the user record is
// revalidated against the backend. Parse or fetch failure clears all
// credential state. Init also starts watching the broadcast channel so
// credential changes in other processes re-run this resolution; the watcher
// stops when ctx is cancelled.
func (h *Holder) Init(ctx context.Context) error {
	err := h.resolve(ctx)
	h.watch(ctx)
	return err
}

func (h *Holder) resolve(ctx context.Context) error {
	tok, tokErr := h.kv.Get(ctx, core.KeyAccessToken)
	raw, rawErr := h.kv.Get(ctx, core.KeyUserData)
	hasToken := tokErr == nil && tok != ""
	hasSnapshot := rawErr == nil
	if !hasToken || !hasSnapshot {
		// one half without the other is leftover credential state; clear it
		// so no orphaned token or snapshot survives
		if hasToken || hasSnapshot {
			h.clearAuthData(ctx)
		} else {
			h.setAnonymous()
		}
		return nil
	}

	var usr user.User
	if err := json.Unmarshal([]byte(raw), &usr); err != nil {
		h.log.Error("session: corrupt user snapshot", err)
		h.clearAuthData(ctx)
		return nil
	}

	if at, err := tokenExpiry(tok); err == nil && at.Before(nowFunc()) {
		h.log.Debug("session: stored access token expired; relying on refresh")
	}

	h.mu.Lock()
	h.state = StateAuthenticated
	h.usr = usr
	h.isSiteAdmin = usr.IsSiteAdmin
	h.mu.Unlock()

	// Revalidate: pick up fields the snapshot may be missing and confirm
	// the credentials still work.
	if _, err := h.fetchUserData(ctx, usr.ID); err != nil {
		h.log.Error("session: revalidating stored session", err)
		h.clearAuthData(ctx)
	}
	return nil
}

// Login authenticates and persists the returned token pair and user
// payload, then opportunistically re-fetches the full user record (the
// login payload omits fields like the admin flag). On failure existing
// session state is left untouched and the extracted message is returned.
func (h *Holder) Login(ctx context.Context, username, password string) error {
	h.mu.Lock()
	prev := h.state
	h.state = StateAuthenticating
	h.mu.Unlock()

	payload, err := h.api.Login(ctx, username, password)
	if err != nil {
		h.mu.Lock()
		h.state = prev
		h.mu.Unlock()
		return errors.New(core.ErrorMessage(err, loginFallbackMessage))
	}

	if err := h.persistLogin(ctx, payload); err != nil {
		h.mu.Lock()
		h.state = prev
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.state = StateAuthenticated
	h.usr = payload.User
	h.isSiteAdmin = payload.User.IsSiteAdmin
	h.mu.Unlock()

	if payload.User.ID != 0 {
		if _, err := h.fetchUserData(ctx, payload.User.ID); err != nil {
			h.log.Error("session: fetching full user record after login", err)
		}
	}
	h.broadcast(ctx)
	return nil
}

// Logout invalidates the refresh token server-side (best effort; errors are
// logged, not surfaced) and unconditionally clears local credential state.
func (h *Holder) Logout(ctx context.Context) {
	if refreshTok, err := h.kv.Get(ctx, core.KeyRefreshToken); err == nil && refreshTok != "" {
		if err := h.api.Logout(ctx, refreshTok); err != nil {
			h.log.Error("session: logout call failed", err)
		}
	}
	h.clearAuthData(ctx)
	h.broadcast(ctx)
}

// CheckSiteAdmin refreshes the cached admin flag from the dedicated
// endpoint. No-op unless authenticated; the flag is never inferred from role
// strings.
func (h *Holder) CheckSiteAdmin(ctx context.Context) error {
	usr, ok := h.User()
	if !ok || usr.ID == 0 {
		return nil
	}
	isAdmin, err := h.api.IsSiteAdmin(ctx, usr.ID)
	if err != nil {
		h.log.Error("session: checking admin status", err)
		h.mu.Lock()
		h.isSiteAdmin = false
		h.mu.Unlock()
		return err
	}
	h.mu.Lock()
	h.isSiteAdmin = isAdmin
	h.usr.IsSiteAdmin = isAdmin
	usr = h.usr
	h.mu.Unlock()
	return h.persistUser(ctx, usr)
}

// UpdateUserData shallow-merges a partial profile edit into the cached user
// and re-persists it; used for optimistic profile edits.
func (h *Holder) UpdateUserData(ctx context.Context, p user.UpdateParams) {
	h.mu.Lock()
	if h.state != StateAuthenticated {
		h.mu.Unlock()
		return
	}
	h.usr = h.usr.Merge(p)
	usr := h.usr
	h.mu.Unlock()

	if err := h.persistUser(ctx, usr); err != nil {
		h.log.Error("session: persisting user update", err)
	}
	h.broadcast(ctx)
}

func (h *Holder) fetchUserData(ctx context.Context, id int) (user.User, error) {
	usr, err := h.api.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	h.mu.Lock()
	h.usr = usr
	h.isSiteAdmin = usr.IsSiteAdmin
	h.mu.Unlock()
	if err := h.persistUser(ctx, usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (h *Holder) persistLogin(ctx context.Context, payload api.AuthPayload) error {
	if err := h.kv.Set(ctx, core.KeyAccessToken, payload.AccessToken); err != nil {
		return err
	}
	if err := h.kv.Set(ctx, core.KeyRefreshToken, payload.RefreshToken); err != nil {
		return err
	}
	return h.persistUser(ctx, payload.User)
}

func (h *Holder) persistUser(ctx context.Context, usr user.User) error {
	data, err := json.Marshal(usr)
	if err != nil {
		return errors.Wrap(err, "session: encoding user snapshot")
	}
	return h.kv.Set(ctx, core.KeyUserData, string(data))
}

func (h *Holder) setAnonymous() {
	h.mu.Lock()
	h.state = StateAnonymous
	h.usr = user.User{}
	h.isSiteAdmin = false
	h.mu.Unlock()
}

func (h *Holder) clearAuthData(ctx context.Context) {
	if err := h.kv.Delete(ctx, core.KeyAccessToken, core.KeyRefreshToken, core.KeyUserData); err != nil {
		h.log.Error("session: clearing credentials", err)
	}
	h.setAnonymous()
}

func (h *Holder) broadcast(ctx context.Context) {
	if h.bc == nil {
		return
	}
	if err := h.bc.Publish(ctx, core.NewSessionEvent()); err != nil {
		h.log.Error("session: broadcasting session change", err)
	}
}

// watch re-runs startup resolution whenever another process signals a
// session change, keeping open "tabs" consistent.
func (h *Holder) watch(ctx context.Context) {
	if h.bc == nil {
		return
	}
	events, err := h.bc.Subscribe(ctx)
	if err != nil {
		h.log.Error("session: subscribing to session events", err)
		return
	}
	go func() {
		for range events {
			if err := h.resolve(ctx); err != nil {
				h.log.Error("session: re-resolving after session event", err)
			}
		}
	}()
}
