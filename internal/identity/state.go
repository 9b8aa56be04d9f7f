package identity

import "github.com/wardstockhq/wardstock-backend/pkg/models"

// State is the resolution phase of one device session.
type State string

const (
	StateUninitialized         State = "UNINITIALIZED"
	StateResolving             State = "RESOLVING"
	StateAuthenticatedPlatform State = "AUTHENTICATED_PLATFORM"
	StateAuthenticatedManual   State = "AUTHENTICATED_MANUAL"
	StateUnauthenticated       State = "UNAUTHENTICATED"
)

// Session is the resolved outcome for one device.
type Session struct {
	State    State           `json:"state"`
	Identity models.Identity `json:"identity"`
}

// Authenticated reports whether the session carries a usable actor.
func (s Session) Authenticated() bool {
	return (s.State == StateAuthenticatedPlatform || s.State == StateAuthenticatedManual) &&
		s.Identity.Authenticated()
}
