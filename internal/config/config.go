package config

type Config interface {
	EnvConfig
	CorsConfig
	AccessConfig
	SessionConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetIdentityIssuer() string
	GetIdentityClientID() string
	GetIdentityClientSecret() string
	GetImageCDNCloud() string
	GetImageCDNKey() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Access
	Session
	Store
}

func New() Config {
	return mainConfig{}
}
