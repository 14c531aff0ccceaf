// Package config provides environment-variable configuration using Viper,
// with an optional config.yaml overlay for local development.
package config
