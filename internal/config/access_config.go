package config

import "strings"

const superAdminEmailsVar = "SUPER_ADMIN_EMAILS"

type AccessConfig interface {
	GetSuperAdminEmails() []string
	GetServiceKeyHash() string
}

type Access struct{}

var _ AccessConfig = Access{}

// GetSuperAdminEmails returns the operator-configured allow-list of emails
// eligible for the elevated role, lowercase-normalized and trimmed. The
// environment is read on every call so the resolver always sees the current
// list rather than a cached copy.
func (Access) GetSuperAdminEmails() []string {
	raw := GetEnv(superAdminEmailsVar, "")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		e := strings.ToLower(strings.TrimSpace(p))
		if e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// GetServiceKeyHash returns the bcrypt hash of the service-account key that
// trusted backend jobs present when appending notifications.
func (Access) GetServiceKeyHash() string {
	return GetEnv("SERVICE_KEY_HASH", "")
}
