// Package config holds dupespotter's runtime settings: defaults, flag
// overrides, the optional YAML config file with per-site request headers
// and extra noise rules, and the XDG directories used for the cache.
package config
