package probe

import (
	"context"
	"fmt"
	"time"

	"hostwire"
	"hostwire/reconcile"

	"github.com/beevik/ntp"
)

// Clock probes the host clock offset against an NTP pool. Boards
// without an RTC boot with a wildly wrong clock, which breaks package
// installs; a Mismatch here means the clock needs a step.
func Clock(pool string, threshold time.Duration) reconcile.ProbeFunc {
	return func(ctx context.Context) (hostwire.Observation, error) {
		resp, err := ntp.Query(pool)
		if err != nil {
			// No network or no NTP reachable: probe unavailable.
			return hostwire.Unknown(err.Error()), err
		}
		offset := resp.ClockOffset
		if offset < 0 {
			offset = -offset
		}
		if offset < threshold {
			return hostwire.Present(fmt.Sprintf("offset %s", resp.ClockOffset)), nil
		}
		return hostwire.Mismatch(fmt.Sprintf("offset %s exceeds %s", resp.ClockOffset, threshold)), nil
	}
}
