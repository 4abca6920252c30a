// Package config loads runtime configuration for the corral device daemon
// and CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Default).
//  2. Optional config file selected via -c, -config or --config. Files
//     ending in .yaml/.yml are YAML, anything else JSON.
//  3. Command-line flags bound by (*Config).BindFlags, which override
//     earlier values.
//
// The file loader uses timex.Duration for intervals, so values can be
// either strings like "30s" or integer nanoseconds:
//
//	identity:
//	  type: email
//	  principal: alice@example.com
//	app_id: photos
//	data_dir: /var/lib/corral
//	origin_addr: ":8311"
//	authority_url: http://authority:8080
//	relay_base_url: http://minio:9000/corral
//	http_timeout: 30s
//
// This package does not read environment variables directly.
package config
