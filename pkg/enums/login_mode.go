package enums

import "fmt"

// LoginMode records how the current actor was identified.
type LoginMode string

const (
	LoginModePlatform LoginMode = "PLATFORM"
	LoginModeManual   LoginMode = "MANUAL"
	LoginModeNone     LoginMode = "NONE"
)

var validLoginModes = []LoginMode{
	LoginModePlatform,
	LoginModeManual,
	LoginModeNone,
}

// String implements fmt.Stringer.
func (m LoginMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known LoginMode.
func (m LoginMode) IsValid() bool {
	for _, candidate := range validLoginModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseLoginMode converts raw input into a LoginMode.
func ParseLoginMode(value string) (LoginMode, error) {
	for _, candidate := range validLoginModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid login mode %q", value)
}
