package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustLoad is Load plus the checks the server cannot start without.
func MustLoad() Config {
	cfg := Load()

	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	return cfg
}
