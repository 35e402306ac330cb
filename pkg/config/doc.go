// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Configuration is described by plain structs with `env` field tags
// (github.com/caarlos0/env). Values are parsed once per type and cached for
// the process lifetime, so collaborating packages can each call Load for the
// config they need without duplicating parsing work.
package config
