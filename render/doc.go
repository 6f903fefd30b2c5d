// Package render generates every artifact the provisioner writes:
// the cargo build-config fragment, the radio adapter config, the two
// systemd units, and the bridge control script. Rendering is pure —
// parameters in, text out — so generated content is unit-testable
// without touching a filesystem.
package render
