package controllers

import (
	"net/http"
	"time"

	"github.com/wardstockhq/wardstock-backend/api/middleware"
	"github.com/wardstockhq/wardstock-backend/api/responses"
	"github.com/wardstockhq/wardstock-backend/api/validators"
	"github.com/wardstockhq/wardstock-backend/internal/identity"
	pkgauth "github.com/wardstockhq/wardstock-backend/pkg/auth"
	"github.com/wardstockhq/wardstock-backend/pkg/config"
	pkgerrors "github.com/wardstockhq/wardstock-backend/pkg/errors"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

type manualLoginRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type platformLoginRequest struct {
	DeviceID    string `json:"device_id" validate:"required"`
	AccessToken string `json:"access_token"`
	RedirectTo  string `json:"redirect_to"`
}

type logoutRequest struct {
	DeviceID    string `json:"device_id" validate:"required"`
	AccessToken string `json:"access_token"`
}

type sessionResponse struct {
	Session  identity.Session `json:"session"`
	Token    string           `json:"token,omitempty"`
	LoginURL string           `json:"login_url,omitempty"`
}

func mintToken(jwtCfg config.JWTConfig, sess identity.Session) (string, error) {
	return pkgauth.MintSessionToken(jwtCfg, time.Now(), pkgauth.SessionTokenPayload{
		DisplayName: sess.Identity.DisplayName,
		PictureURL:  sess.Identity.PictureURL,
		LoginMode:   sess.Identity.LoginMode,
	})
}

// ManualLogin authenticates a device with an operator-typed name.
func ManualLogin(resolver *identity.Resolver, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload manualLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := resolver.LoginWithManualName(r.Context(), payload.DeviceID, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := mintToken(jwtCfg, sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		responses.WriteSuccess(w, sessionResponse{Session: sess, Token: token})
	}
}

// PlatformLogin resolves a device through the platform SSO widget. An
// unauthenticated outcome is not an error: the response carries the
// session state and the SSO URL so the client can offer both affordances.
func PlatformLogin(resolver *identity.Resolver, platformCfg config.PlatformConfig, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload platformLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		widget := identity.NewPlatformWidget(platformCfg, payload.AccessToken)
		sess, err := resolver.Resolve(r.Context(), payload.DeviceID, widget)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := sessionResponse{Session: sess}
		if sess.Authenticated() {
			token, err := mintToken(jwtCfg, sess)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
				return
			}
			resp.Token = token
		} else {
			resp.LoginURL = widget.LoginURL(payload.RedirectTo)
		}

		responses.WriteSuccess(w, resp)
	}
}

// Logout tears down the device session. Idempotent.
func Logout(resolver *identity.Resolver, platformCfg config.PlatformConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload logoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		widget := identity.NewPlatformWidget(platformCfg, payload.AccessToken)
		if err := resolver.Logout(r.Context(), payload.DeviceID, widget); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// Me returns the actor behind the bearer token.
func Me(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		responses.WriteSuccess(w, actor)
	}
}
