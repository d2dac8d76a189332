// Package config holds the environment-driven configuration structs shared
// by the service entry points. Values are read with cleanenv from ACM_*
// environment variables, optionally seeded from a .env file.
package config
