// Package config loads, parses and validates application settings from
// defaults, an optional config file and REALTORIST_-prefixed environment
// variables. Environment variables win over the file.
package config
