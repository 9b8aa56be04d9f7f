package models

import "github.com/wardstockhq/wardstock-backend/pkg/enums"

// Profile is the data returned by the platform SSO widget for a logged-in user.
type Profile struct {
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// Identity is the resolved actor for the current session.
type Identity struct {
	LoginMode   enums.LoginMode `json:"login_mode"`
	DisplayName string          `json:"display_name,omitempty"`
	PictureURL  string          `json:"picture_url,omitempty"`
}

// Authenticated reports whether the identity carries a usable actor name.
func (i Identity) Authenticated() bool {
	return i.LoginMode != enums.LoginModeNone && i.DisplayName != ""
}
