package config

type StoreConfig interface {
	GetSQLitePath() string
	GetRedisAddr() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetSQLitePath() string {
	return GetEnv("SQLITE_PATH", "./data/club.db")
}

// GetRedisAddr returns the address of the optional Redis instance backing
// credential revocation. Empty means the in-memory store is used.
func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}
