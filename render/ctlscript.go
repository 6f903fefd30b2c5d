package render

import "fmt"

// ControlScript renders the shell wrapper installed next to the units.
// It dispatches the fixed verb set onto systemctl; an unknown verb
// prints usage and exits 64 (EX_USAGE).
func ControlScript() string {
	return fmt.Sprintf(`#!/bin/sh
# Generated by hostwire. Edits will be overwritten on the next apply.

BRIDGE=%s
WATCHDOG=%s

case "$1" in
    start)
        systemctl start "$BRIDGE" "$WATCHDOG"
        ;;
    stop)
        systemctl stop "$WATCHDOG" "$BRIDGE"
        ;;
    restart)
        systemctl restart "$BRIDGE" "$WATCHDOG"
        ;;
    status)
        systemctl status "$BRIDGE" "$WATCHDOG"
        ;;
    enable)
        systemctl enable "$BRIDGE" "$WATCHDOG"
        ;;
    disable)
        systemctl disable "$BRIDGE" "$WATCHDOG"
        ;;
    *)
        echo "usage: $0 {start|stop|restart|status|enable|disable}" >&2
        exit 64
        ;;
esac
`, BridgeUnit, WatchdogUnit)
}
