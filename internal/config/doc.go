// Package config loads and validates vigil configuration.
//
// Configuration is layered: built-in defaults, then a TOML file, then
// VIGIL_* environment variables. Command-line flags are applied by the
// caller on the returned Config. A Watcher reloads the file when it
// changes on disk.
package config
