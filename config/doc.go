// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml over built-in defaults, then
// PLANNER_* environment variables (optionally from a .env file) override
// selected fields. Fields are validated using struct tags; the fare and
// engine budget rules are checked across fields.
package config
