// Package system wraps the host-mutating side effects: spawning
// external commands, idempotent file writes, and systemd unit control.
// Everything goes through the Runner interface so plans can be
// exercised against fakes.
package system
