package domain

import "time"

// Athlete represents one authenticated Strava identity
type Athlete struct {
	ID            int64     `json:"id" db:"id"`
	StravaID      int64     `json:"strava_id" db:"strava_id"`
	Username      *string   `json:"username" db:"username"`
	Firstname     *string   `json:"firstname" db:"firstname"`
	Lastname      *string   `json:"lastname" db:"lastname"`
	ProfileMedium *string   `json:"profile_medium" db:"profile_medium"`
	AccessToken   string    `json:"-" db:"access_token"`
	RefreshToken  string    `json:"-" db:"refresh_token"`
	ExpiresAt     int64     `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// TokenExpired reports whether the stored access token is past its
// Strava-reported absolute expiry at the given instant.
func (a *Athlete) TokenExpired(now time.Time) bool {
	return a.ExpiresAt <= now.Unix()
}

// DisplayName returns a printable name for logs and responses.
func (a *Athlete) DisplayName() string {
	name := ""
	if a.Firstname != nil {
		name = *a.Firstname
	}
	if a.Lastname != nil {
		if name != "" {
			name += " "
		}
		name += *a.Lastname
	}
	if name == "" && a.Username != nil {
		name = *a.Username
	}
	return name
}

// SessionClaims holds the identity carried by a local session token.
type SessionClaims struct {
	AthleteID int64
	StravaID  int64
}
