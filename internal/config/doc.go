// Package config handles configuration loading for the nubarmory server.
//
// # Configuration File
//
// Default location (see DefaultPath):
//
//  1. Path from NUBARMORY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/nubarmory/server.yaml
//  3. ~/.config/nubarmory/server.yaml
//
// Files ending in .toml are read as TOML; anything else is YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${NUBARMORY_JWT_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  shutdown_timeout: "5s"
//
//	database:
//	  path: "/var/lib/nubarmory/store.db"
//	  driver: "sqlite"               # sqlite (pure Go) or sqlite3 (cgo)
//
//	auth:
//	  jwt_secret: "${NUBARMORY_JWT_SECRET}"  # at least 32 bytes
//	  secure_cookie: true
//	  verifier: "full"               # full or edge
//	  token_ttl: "168h"
//
//	logging:
//	  level: "info"                  # debug, info, warn, error
//	  format: "text"                 # text, json
//	  file: ""                       # rotate into this file when set
//	  max_size_mb: 100
//	  max_backups: 0
//	  max_age_days: 0
//
//	metrics:
//	  enabled: false
//	  path: "/metrics"
//
//	ratelimit:
//	  redis_addr: ""                 # empty disables login rate limiting
//	  redis_password: ""
//	  redis_db: 0
//	  login_per_minute: 10
//
// # Validation
//
// Load validates required fields, the secret length, the driver and verifier
// names, and duration syntax.
package config
