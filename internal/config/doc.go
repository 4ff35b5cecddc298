// Package config loads and validates ripple server configuration.
//
// Configuration is a YAML file with four sections:
//
//	server:
//	  http_addr: ":8080"
//	database:
//	  path: /var/lib/ripple/ripple.db
//	auth:
//	  jwt_secret: ${RIPPLE_JWT_SECRET}
//	  token_ttl: 24h
//	logging:
//	  level: info
//	  format: text
//
// Environment variables referenced as ${VAR_NAME} are expanded before
// parsing, so secrets can be kept out of the file itself. Duration fields
// accept Go duration strings ("30s", "24h").
//
// Load returns an error for missing required fields; optional fields fall
// back to package defaults.
package config
