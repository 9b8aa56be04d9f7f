package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardstockhq/wardstock-backend/pkg/enums"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

type memoryStore struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	manual   map[string]string
	failGets bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles: make(map[string]models.Profile),
		manual:   make(map[string]string),
	}
}

func (s *memoryStore) Profile(_ context.Context, deviceID string) (models.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[deviceID]
	return p, ok, nil
}

func (s *memoryStore) SaveProfile(_ context.Context, deviceID string, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[deviceID] = p
	return nil
}

func (s *memoryStore) ManualName(_ context.Context, deviceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGets {
		return "", errors.New("store down")
	}
	return s.manual[deviceID], nil
}

func (s *memoryStore) SaveManualName(_ context.Context, deviceID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manual[deviceID] = name
	return nil
}

func (s *memoryStore) Clear(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, deviceID)
	delete(s.manual, deviceID)
	return nil
}

type fakeWidget struct {
	inClient   bool
	initErr    error
	loggedIn   bool
	profile    models.Profile
	profileErr error

	initCalled   bool
	logoutCalled int
}

func (w *fakeWidget) Init(context.Context) error {
	w.initCalled = true
	return w.initErr
}
func (w *fakeWidget) IsInClient() bool   { return w.inClient }
func (w *fakeWidget) IsLoggedIn() bool   { return w.loggedIn && w.initErr == nil }
func (w *fakeWidget) LoginURL(redirectTo string) string {
	return "https://sso.example/authorize?redirect_uri=" + redirectTo
}
func (w *fakeWidget) Profile(context.Context) (models.Profile, error) {
	return w.profile, w.profileErr
}
func (w *fakeWidget) Logout(context.Context) error {
	w.logoutCalled++
	return nil
}
func (w *fakeWidget) SendMessages(context.Context, ...string) error { return nil }

func testResolver(store ProfileStore) *Resolver {
	logg := logger.New(logger.Options{ServiceName: "identity-test", Level: logger.ParseLevel("error")})
	return NewResolver(store, logg)
}

func TestResolveManualFastPathSkipsWidget(t *testing.T) {
	store := newMemoryStore()
	store.manual["dev-1"] = "Nurse Ying"
	widget := &fakeWidget{inClient: true, loggedIn: true}

	sess, err := testResolver(store).Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticatedManual, sess.State)
	assert.Equal(t, "Nurse Ying", sess.Identity.DisplayName)
	assert.Equal(t, enums.LoginModeManual, sess.Identity.LoginMode)
	assert.False(t, widget.initCalled, "manual fast path must not touch the widget")
}

func TestResolveGuestPlaceholderIsNotAName(t *testing.T) {
	store := newMemoryStore()
	store.manual["dev-1"] = "Guest"

	sess, err := testResolver(store).Resolve(context.Background(), "dev-1", &fakeWidget{})
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, sess.State)
}

func TestResolveWidgetUnavailable(t *testing.T) {
	sess, err := testResolver(newMemoryStore()).Resolve(context.Background(), "dev-1", &fakeWidget{inClient: false})
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, sess.State)
	assert.Equal(t, enums.LoginModeNone, sess.Identity.LoginMode)
	assert.False(t, sess.Authenticated())
}

func TestResolveWidgetNotLoggedIn(t *testing.T) {
	sess, err := testResolver(newMemoryStore()).Resolve(context.Background(), "dev-1", &fakeWidget{inClient: true, loggedIn: false})
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, sess.State)
}

func TestResolvePlatformLoginPersistsProfile(t *testing.T) {
	store := newMemoryStore()
	widget := &fakeWidget{
		inClient: true,
		loggedIn: true,
		profile:  models.Profile{DisplayName: "Somchai", PictureURL: "https://cdn.example/p.jpg"},
	}

	sess, err := testResolver(store).Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticatedPlatform, sess.State)
	assert.Equal(t, "Somchai", sess.Identity.DisplayName)
	assert.Equal(t, enums.LoginModePlatform, sess.Identity.LoginMode)
	assert.True(t, sess.Authenticated())

	persisted, ok, err := store.Profile(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Somchai", persisted.DisplayName)
}

func TestResolveProfileFetchFailure(t *testing.T) {
	widget := &fakeWidget{inClient: true, loggedIn: true, profileErr: errors.New("profile endpoint down")}
	sess, err := testResolver(newMemoryStore()).Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, sess.State)
}

func TestResolveRunsOncePerSession(t *testing.T) {
	store := newMemoryStore()
	resolver := testResolver(store)
	widget := &fakeWidget{inClient: true, loggedIn: true, profile: models.Profile{DisplayName: "Somchai"}}

	first, err := resolver.Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)

	widget.initCalled = false
	second, err := resolver.Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.False(t, widget.initCalled, "second resolve must reuse the session")
}

func TestResolveStoreErrorFallsThroughToWidget(t *testing.T) {
	store := newMemoryStore()
	store.failGets = true
	widget := &fakeWidget{inClient: true, loggedIn: true, profile: models.Profile{DisplayName: "Somchai"}}

	sess, err := testResolver(store).Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticatedPlatform, sess.State)
}

func TestLoginWithManualNameRejectsBlank(t *testing.T) {
	resolver := testResolver(newMemoryStore())

	for _, name := range []string{"", "   ", "\t\n"} {
		sess, err := resolver.LoginWithManualName(context.Background(), "dev-1", name)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		assert.Equal(t, StateUninitialized, sess.State, "blank names must not change state")
	}
}

func TestLoginWithManualNameTrimsAndPersists(t *testing.T) {
	store := newMemoryStore()
	resolver := testResolver(store)

	sess, err := resolver.LoginWithManualName(context.Background(), "dev-1", "  Nurse Ying  ")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticatedManual, sess.State)
	assert.Equal(t, "Nurse Ying", sess.Identity.DisplayName)
	assert.Equal(t, "Nurse Ying", store.manual["dev-1"])
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	resolver := testResolver(store)
	widget := &fakeWidget{inClient: true, loggedIn: true, profile: models.Profile{DisplayName: "Somchai"}}

	_, err := resolver.Resolve(context.Background(), "dev-1", widget)
	require.NoError(t, err)

	require.NoError(t, resolver.Logout(context.Background(), "dev-1", widget))
	assert.Equal(t, 1, widget.logoutCalled)
	assert.Empty(t, store.manual)
	assert.Empty(t, store.profiles)
	assert.Equal(t, StateUnauthenticated, resolver.Session("dev-1").State)

	// Second logout is a no-op, not an error; platform logout is not repeated.
	require.NoError(t, resolver.Logout(context.Background(), "dev-1", widget))
	assert.Equal(t, 1, widget.logoutCalled)
}

func TestLogoutAfterManualLoginSkipsPlatform(t *testing.T) {
	store := newMemoryStore()
	resolver := testResolver(store)
	widget := &fakeWidget{inClient: true}

	_, err := resolver.LoginWithManualName(context.Background(), "dev-1", "Nurse Ying")
	require.NoError(t, err)

	require.NoError(t, resolver.Logout(context.Background(), "dev-1", widget))
	assert.Zero(t, widget.logoutCalled)
	assert.Empty(t, store.manual, "manual name must never survive logout")
}
