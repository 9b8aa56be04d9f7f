package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wardstockhq/wardstock-backend/pkg/config"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

// Widget abstracts the platform SSO surface. The HTTP implementation talks
// to the platform API with a per-session access token; tests substitute
// fakes for the unavailable / not-logged-in / logged-in branches.
type Widget interface {
	// Init verifies the session credential with the platform. An error
	// here means the platform answered but rejected the credential.
	Init(ctx context.Context) error
	// IsInClient reports whether the session originated inside the host
	// platform at all. False means the widget surface is unavailable.
	IsInClient() bool
	// IsLoggedIn reports whether Init established an authenticated user.
	IsLoggedIn() bool
	// LoginURL builds the SSO redirect URL, preserving redirectTo so the
	// user returns to the same screen after authenticating.
	LoginURL(redirectTo string) string
	// Profile fetches the authenticated user's profile.
	Profile(ctx context.Context) (models.Profile, error)
	// Logout revokes the platform session credential.
	Logout(ctx context.Context) error
	// SendMessages pushes notification texts into the user's chat.
	SendMessages(ctx context.Context, texts ...string) error
}

type platformWidget struct {
	httpClient  *http.Client
	baseURL     string
	appID       string
	accessToken string
	loggedIn    bool
}

// NewPlatformWidget builds a Widget bound to one session's access token.
// An empty token models a session outside the host platform.
func NewPlatformWidget(cfg config.PlatformConfig, accessToken string) Widget {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &platformWidget{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		appID:       cfg.AppID,
		accessToken: strings.TrimSpace(accessToken),
	}
}

func (w *platformWidget) IsInClient() bool {
	return w.accessToken != ""
}

func (w *platformWidget) IsLoggedIn() bool {
	return w.loggedIn
}

func (w *platformWidget) Init(ctx context.Context) error {
	if !w.IsInClient() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no platform session credential")
	}

	target := fmt.Sprintf("%s/oauth2/v2.1/verify?access_token=%s", w.baseURL, url.QueryEscape(w.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build verify request")
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "verify platform credential")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		w.loggedIn = false
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "platform credential rejected")
	}
	w.loggedIn = true
	return nil
}

func (w *platformWidget) LoginURL(redirectTo string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", w.appID)
	query.Set("scope", "profile openid")
	if redirectTo != "" {
		query.Set("redirect_uri", redirectTo)
	}
	return w.baseURL + "/oauth2/v2.1/authorize?" + query.Encode()
}

func (w *platformWidget) Profile(ctx context.Context) (models.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/v2/profile", nil)
	if err != nil {
		return models.Profile{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build profile request")
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return models.Profile{}, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "fetch platform profile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.Profile{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "platform profile fetch rejected")
	}

	var profile models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return models.Profile{}, pkgerrors.Wrap(pkgerrors.CodeServer, err, "decode platform profile")
	}
	return profile, nil
}

func (w *platformWidget) Logout(ctx context.Context) error {
	if !w.IsInClient() {
		return nil
	}
	form := url.Values{}
	form.Set("access_token", w.accessToken)
	form.Set("client_id", w.appID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/oauth2/v2.1/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build revoke request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "revoke platform credential")
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	w.loggedIn = false
	return nil
}

func (w *platformWidget) SendMessages(ctx context.Context, texts ...string) error {
	if len(texts) == 0 {
		return nil
	}
	type message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	messages := make([]message, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, message{Type: "text", Text: text})
	}
	body, err := json.Marshal(map[string]any{"messages": messages})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode messages")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v2/messages", bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build messages request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.accessToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "send platform messages")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.New(pkgerrors.CodeServer, fmt.Sprintf("messages push failed with status %d", resp.StatusCode))
	}
	return nil
}
