package scroll

import "time"

// Sleeper is a Delayer backed by time.Sleep with millisecond granularity.
type Sleeper struct{}

// Delay blocks for d truncated to whole milliseconds.
func (Sleeper) Delay(d time.Duration) {
	d = d.Truncate(time.Millisecond)
	if d <= 0 {
		return
	}
	time.Sleep(d)
}
