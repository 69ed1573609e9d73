// Package schemas provides the built-in schemas the registry daemon serves.
//
// Two schemas are registered by Register:
//   - app/rgbled: a three-channel LED with one instance per light, whose
//     commit latches the configured colour into its output
//   - sys/node: the node's own settings, organised in nested groups
//
// Paths such as "app/rgbled/status/red" or "sys/node/local/net/port" resolve
// against these schemas.
package schemas
