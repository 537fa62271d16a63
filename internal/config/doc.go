// Package config defines configuration for the picsum CLI.
//
// Configuration can be provided via, in increasing order of precedence:
//   - Built-in defaults
//   - YAML configuration file
//   - Environment variables (PICSUM_ prefix)
//   - Command-line flags
//
// # File Format
//
//	width: 1920
//	height: 1080
//	count: 50
//	threads: 4
//	dir: /srv/wallpapers
//	bucket: s3://my-bucket?region=us-east-1
//	base_url: https://picsum.photos
//	timeout: 60s
//	verbose: false
package config
