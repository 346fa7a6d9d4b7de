// Package config loads typed configuration structs from environment
// variables via github.com/caarlos0/env, with optional .env file support
// through godotenv for local development.
package config
