// Package config defines the daemon settings and helpers to load, validate
// and save them in YAML format.
//
// The Config type holds the bed/wake schedule, the control socket and state
// locations, logging options and the notify/playback action backends.
// Secrets for the actions may live in a dotenv file referenced by env_file.
package config
