// Package config handles configuration loading for tertulia.
//
// # Overview
//
// Configuration is loaded from a YAML (or TOML, by .toml extension) file with
// environment variable expansion. A missing default file is fine: the
// gateway URL can come from TERTULIA_GATEWAY_URL alone.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from TERTULIA_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/tertulia/config.yaml
//  3. ~/.config/tertulia/config.yaml
//
// # Configuration Sections
//
//	gateway:
//	  url: "${TERTULIA_GATEWAY_URL}"  # required
//	  timeout: "30s"                  # per request, empty = none
//
//	session:
//	  token_path: ""                  # default: <config dir>/token
//
//	cache:
//	  ttl: "30s"                      # channel/thread list cache
//	  max_entries: 64
//
//	logging:
//	  level: "warn"                   # debug, info, warn, error
//	  format: "text"                  # text, json
//
// # Usage
//
//	cfg, path, err := config.LoadDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
