package render

import "fmt"

// Unit file names installed under the systemd unit directory.
const (
	BridgeUnit   = "hostwire-bridge.service"
	WatchdogUnit = "hostwire-watchdog.service"
)

// BridgeUnitParams parameterizes the RFCOMM listener unit.
type BridgeUnitParams struct {
	Adapter string // hci0
	Channel int
	Shell   string // command rfcomm hands the connection to, e.g. "/sbin/agetty -L rfcomm0 115200 vt100"
	LogPath string
}

// BridgeUnitFile renders the unit that keeps an RFCOMM listener bound
// to the adapter. rfcomm blocks in watch mode and respawns the shell
// per connection; systemd restarts the listener itself.
func BridgeUnitFile(p BridgeUnitParams) string {
	return fmt.Sprintf(`[Unit]
Description=hostwire RFCOMM serial bridge
After=bluetooth.target
Requires=bluetooth.target

[Service]
Type=simple
ExecStart=/usr/bin/rfcomm watch %s %d %s
Restart=always
RestartSec=5
StandardOutput=append:%s
StandardError=append:%s

[Install]
WantedBy=multi-user.target
`, p.Adapter, p.Channel, p.Shell, p.LogPath, p.LogPath)
}

// WatchdogUnitParams parameterizes the watchdog unit.
type WatchdogUnitParams struct {
	Binary     string // hostwire binary path
	ConfigPath string
	LogPath    string
}

// WatchdogUnitFile renders the unit running `hostwire watchdog`, which
// keeps the bridge unit alive and serves the PIN pairing agent. Ordered
// strictly after the bridge so its first probe sees a started unit.
func WatchdogUnitFile(p WatchdogUnitParams) string {
	return fmt.Sprintf(`[Unit]
Description=hostwire bridge watchdog and pairing agent
After=%[1]s
Wants=%[1]s

[Service]
Type=notify
ExecStart=%s watchdog --config %s
Restart=always
RestartSec=5
WatchdogSec=90
StandardOutput=append:%s
StandardError=append:%s

[Install]
WantedBy=multi-user.target
`, BridgeUnit, p.Binary, p.ConfigPath, p.LogPath, p.LogPath)
}
