package domain

import (
	"github.com/google/uuid"
)

// SettingType keys a settings document.
type SettingType string

// Setting types.
const (
	SettingTypeProfile  SettingType = "profile"
	SettingTypePassword SettingType = "password"
)

// ProfileSettings identifies the site owner; Email doubles as the admin login.
type ProfileSettings struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PasswordSettings holds the admin password hash. GUID changes with every
// password change and is embedded in issued tokens, so rotating it revokes
// all outstanding tokens.
type PasswordSettings struct {
	Hash string    `json:"hash"`
	GUID uuid.UUID `json:"guid"`
}
