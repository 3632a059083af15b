package config

import "os"

// isProduction reports whether APP_ENV is anything other than "dev",
// "development" or "test". Used only to decide whether certain fallbacks (in-memory
// SessionStore, unset API keys) are tolerated during local development.
func isProduction() bool {
	switch os.Getenv("APP_ENV") {
	case "dev", "development", "test":
		return false
	default:
		return true
	}
}
