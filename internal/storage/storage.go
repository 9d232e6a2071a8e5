// Package storage defines the persistence contract shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"strings"
)

// IsPostgres reports whether a --config value is a PostgreSQL connection
// string rather than a SQLite file path.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") ||
		strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=") ||
		strings.Contains(config, "dbname=")
}

// HasEmbeddedCredentials reports whether a PostgreSQL URL or DSN carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		rest := connStr[strings.Index(connStr, "://")+3:]
		at := strings.Index(rest, "@")
		if at < 0 {
			return false
		}
		return strings.Contains(rest[:at], ":")
	}
	for _, pair := range strings.Fields(connStr) {
		k, _, ok := strings.Cut(pair, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "password") {
			return true
		}
	}
	return false
}
