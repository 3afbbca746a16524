// Package operations contains the implementations behind the public client.
//
//   - batch: concurrent round-based upload with per-item retry
package operations
