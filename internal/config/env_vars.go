package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar = "PORT"
	appNameVar = "APP_NAME"
	baseURLVar = "BASE_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Club Server")
}

// GetBaseURL returns the public base URL of the site (e.g. "https://club.example.org").
// Used for cookie domains, redirect URIs, and page metadata.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetIdentityIssuer implements EnvConfig.
func (EnvVars) GetIdentityIssuer() string {
	return GetEnv("IDENTITY_ISSUER", "")
}

// GetIdentityClientID implements EnvConfig.
func (EnvVars) GetIdentityClientID() string {
	return GetEnv("IDENTITY_CLIENT_ID", "")
}

// GetIdentityClientSecret implements EnvConfig.
func (EnvVars) GetIdentityClientSecret() string {
	return GetEnv("IDENTITY_CLIENT_SECRET", "")
}

// GetImageCDNCloud implements EnvConfig. Consumed by the image upload
// collaborator; the core only threads it through.
func (EnvVars) GetImageCDNCloud() string {
	return GetEnv("IMAGE_CDN_CLOUD", "")
}

// GetImageCDNKey implements EnvConfig.
func (EnvVars) GetImageCDNKey() string {
	return GetEnv("IMAGE_CDN_KEY", "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
