// Package config loads, validates, and defaults the TOML configuration that
// drives a dupefinder run: server connection, scoring weight tables, cleanup
// toggles, and the deletion skip list.
package config
