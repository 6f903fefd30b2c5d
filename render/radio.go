package render

import (
	"fmt"
	"strings"
)

// RadioParams describes the desired adapter configuration written to
// /etc/bluetooth/main.conf.
type RadioParams struct {
	Name             string
	Discoverable     bool
	DisabledProfiles []string // BlueZ plugin names, e.g. a2dp, avrcp
}

// Radio renders the bluetoothd main.conf. Timeouts are zeroed so the
// adapter stays discoverable and pairable indefinitely, matching the
// always-on bridge the unit expects.
func Radio(p RadioParams) string {
	var b strings.Builder
	b.WriteString("[General]\n")
	fmt.Fprintf(&b, "Name = %s\n", p.Name)
	fmt.Fprintf(&b, "Discoverable = %t\n", p.Discoverable)
	b.WriteString("DiscoverableTimeout = 0\n")
	b.WriteString("Pairable = true\n")
	b.WriteString("PairableTimeout = 0\n")
	if len(p.DisabledProfiles) > 0 {
		fmt.Fprintf(&b, "DisablePlugins = %s\n", strings.Join(p.DisabledProfiles, ","))
	}
	b.WriteString("\n[Policy]\n")
	b.WriteString("AutoEnable = true\n")
	return b.String()
}
