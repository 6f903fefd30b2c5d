// Package bluetooth converges a Linux single-board computer's radio
// into an RFCOMM serial bridge: adapter reset and visibility, the
// radio config, the PIN pairing agent on the system D-Bus, the two
// systemd units, and the watchdog that keeps the bridge alive.
package bluetooth
