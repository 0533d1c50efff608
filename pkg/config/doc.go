// Package config loads engine configuration from the environment with an
// optional YAML file overlay.
//
// Every tunable has a default matching the engine's built-in limits, an
// environment variable under the HOTSWAP_ prefix, and a yaml key. The file
// overlay, when present, wins over the environment.
package config
