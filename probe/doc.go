// Package probe provides the read-only state checks plans are built
// from: command presence, file contents, systemd unit state, and clock
// sanity. Probes never mutate the host.
package probe
