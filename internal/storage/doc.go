// Package storage holds what the registry's storage facilities share: the
// textual record form of a value, path ordering, and atomic file writes.
//
// Each facility lives in its own subpackage and implements
// registry.StorageFacility:
//
//	heapstore    in-memory map, volatile
//	fsstore      one file of raw bytes per parameter, fsnotify watch
//	yamlstore    single YAML snapshot document
//	sqlstore     SQLite table, one transaction per save
//	mqttstore    retained broker messages
//	influxstore  InfluxDB history, latest value per path on load
//
// Package facilities builds the configured set from config.StorageConfig.
package storage
