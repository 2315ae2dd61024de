package domain

import "time"

// User is the signed-in identity attached to a session.
type User struct {
	ID          string `yaml:"id" json:"id"`
	Email       string `yaml:"email" json:"email"`
	DisplayName string `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	AvatarURL   string `yaml:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}

// Session is the credential handed to the dispatcher by the auth collaborator.
type Session struct {
	AccessToken string    `yaml:"access_token"`
	User        User      `yaml:"user"`
	ExpiresAt   time.Time `yaml:"expires_at,omitempty"`

	// LastKnownBalance is the coins_left value of the most recent successful
	// request. The service owns the balance; this is a display cache only.
	LastKnownBalance *int `yaml:"last_known_balance,omitempty"`
}

// Expired reports whether the session carries an expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Usable reports whether the session can authorise a request at now.
func (s *Session) Usable(now time.Time) bool {
	return s != nil && s.AccessToken != "" && !s.Expired(now)
}

// Name returns the display name, falling back to a generic label.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return "Creator"
}
