// Package config handles loading and validating Gray Logic registry configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Storage facilities are chosen by name under the storage section:
//
//	storage:
//	  save_destination: sqlite       # heap, fs, yaml, sqlite, mqtt, influxdb
//	  load_sources: [yaml, sqlite]   # loaded in order, later sources win
//	  dedup: true                    # skip values the destination already holds
//	  sqlite:
//	    path: ./data/registry.db
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The JWT secret is only required by commands that serve or issue tokens
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.SaveDestination)
package config
