// Package auth issues and verifies the bearer tokens of the registry API.
//
// Tokens are HS256 JWTs carrying a subject and one of two roles:
//   - reader: get and export
//   - writer: everything a reader can do, plus set, commit, load and save
//
// Role permissions are a static mapping; there is no user database.
package auth
