package config

import "time"

type SessionConfig interface {
	GetSessionLifetime() time.Duration
	GetExpiryBuffer() time.Duration
	GetCredentialSecret() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionLifetime returns the fixed session duration. Both the
// marker-based check and the credential expiry derive from this value.
func (Session) GetSessionLifetime() time.Duration {
	if v := GetEnv("SESSION_LIFETIME", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return time.Hour
}

// GetExpiryBuffer returns the window before the credential's embedded expiry
// within which the edge check already treats the session as expired.
func (Session) GetExpiryBuffer() time.Duration {
	return 60 * time.Second
}

func (Session) GetCredentialSecret() string {
	return GetEnv("CREDENTIAL_SECRET", "")
}
