// Package version holds build metadata injected through ldflags and the
// `bedtime version` subcommand that prints it.
package version
