package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// guestPlaceholder is the sentinel a fresh install persists before any real
// name is entered. It never satisfies the manual fast path.
const guestPlaceholder = "guest"

// Resolver owns the per-device session state machine. Resolution runs once
// per device session; logout is idempotent and always lands on
// StateUnauthenticated with no persisted identity left behind.
type Resolver struct {
	store ProfileStore
	logg  *logger.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

// NewResolver builds a Resolver over the persisted identity store.
func NewResolver(store ProfileStore, logg *logger.Logger) *Resolver {
	return &Resolver{
		store:    store,
		logg:     logg,
		sessions: make(map[string]Session),
	}
}

// Session returns the current state for a device without resolving.
func (r *Resolver) Session(deviceID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[deviceID]; ok {
		return sess
	}
	return Session{State: StateUninitialized}
}

// Resolve runs the resolution sequence for a device. Repeat calls return
// the already-resolved session; a device resolves once per app session.
//
// Order: persisted manual name first (fast path, widget untouched), then
// the platform widget. Every widget failure lands on StateUnauthenticated
// rather than surfacing an error; the caller offers the login affordances.
func (r *Resolver) Resolve(ctx context.Context, deviceID string, widget Widget) (Session, error) {
	r.mu.Lock()
	if sess, ok := r.sessions[deviceID]; ok && sess.State != StateUninitialized && sess.State != StateResolving {
		r.mu.Unlock()
		return sess, nil
	}
	r.sessions[deviceID] = Session{State: StateResolving}
	r.mu.Unlock()

	sess := r.resolve(ctx, deviceID, widget)

	r.mu.Lock()
	r.sessions[deviceID] = sess
	r.mu.Unlock()
	return sess, nil
}

func (r *Resolver) resolve(ctx context.Context, deviceID string, widget Widget) Session {
	name, err := r.store.ManualName(ctx, deviceID)
	if err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "device_id", deviceID), "manual name lookup failed")
	}
	name = strings.TrimSpace(name)
	if name != "" && !strings.EqualFold(name, guestPlaceholder) {
		return Session{
			State: StateAuthenticatedManual,
			Identity: models.Identity{
				LoginMode:   enums.LoginModeManual,
				DisplayName: name,
			},
		}
	}

	if widget == nil || !widget.IsInClient() {
		return Session{State: StateUnauthenticated, Identity: models.Identity{LoginMode: enums.LoginModeNone}}
	}
	if err := widget.Init(ctx); err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "device_id", deviceID), "platform widget init failed")
		return Session{State: StateUnauthenticated, Identity: models.Identity{LoginMode: enums.LoginModeNone}}
	}
	if !widget.IsLoggedIn() {
		return Session{State: StateUnauthenticated, Identity: models.Identity{LoginMode: enums.LoginModeNone}}
	}

	profile, err := widget.Profile(ctx)
	if err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "device_id", deviceID), "platform profile fetch failed")
		return Session{State: StateUnauthenticated, Identity: models.Identity{LoginMode: enums.LoginModeNone}}
	}
	if saveErr := r.store.SaveProfile(ctx, deviceID, profile); saveErr != nil {
		r.logg.Warn(r.logg.WithField(ctx, "device_id", deviceID), "profile persist failed")
	}
	return Session{
		State: StateAuthenticatedPlatform,
		Identity: models.Identity{
			LoginMode:   enums.LoginModePlatform,
			DisplayName: profile.DisplayName,
			PictureURL:  profile.PictureURL,
		},
	}
}

// LoginWithManualName authenticates a device with an operator-typed name.
// Blank and whitespace-only names are rejected with no state change.
func (r *Resolver) LoginWithManualName(ctx context.Context, deviceID, name string) (Session, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return r.Session(deviceID), pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
	}

	if err := r.store.SaveManualName(ctx, deviceID, trimmed); err != nil {
		return r.Session(deviceID), err
	}

	sess := Session{
		State: StateAuthenticatedManual,
		Identity: models.Identity{
			LoginMode:   enums.LoginModeManual,
			DisplayName: trimmed,
		},
	}
	r.mu.Lock()
	r.sessions[deviceID] = sess
	r.mu.Unlock()
	return sess, nil
}

// Logout tears the session down regardless of mode: platform credential
// revoked when applicable, every persisted identity key cleared, state set
// to StateUnauthenticated. Safe to call repeatedly.
func (r *Resolver) Logout(ctx context.Context, deviceID string, widget Widget) error {
	r.mu.Lock()
	sess := r.sessions[deviceID]
	r.mu.Unlock()

	if sess.Identity.LoginMode == enums.LoginModePlatform && widget != nil && widget.IsInClient() {
		if err := widget.Logout(ctx); err != nil {
			// Local state still clears; the platform credential expires
			// on its own.
			r.logg.Warn(r.logg.WithField(ctx, "device_id", deviceID), "platform logout failed")
		}
	}

	if err := r.store.Clear(ctx, deviceID); err != nil {
		return err
	}

	r.mu.Lock()
	r.sessions[deviceID] = Session{State: StateUnauthenticated, Identity: models.Identity{LoginMode: enums.LoginModeNone}}
	r.mu.Unlock()
	return nil
}
